package cmd

import (
	"fmt"
	"os"

	"github.com/parlock/parlock/cmd/sim"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "parlock",
		Short: "multi-resource lock coordination for parallel tests",
		Long: fmt.Sprintf(`parlock (v%s)

An in-process lock manager that grants bundles of shared/exclusive
resource locks atomically, so parallel tests touching shared fixtures
never block each other through partially held lock sets.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of parlock",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("parlock v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(sim.SimCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
