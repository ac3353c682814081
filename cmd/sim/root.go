package sim

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/parlock/parlock/cmd/util"
	"github.com/parlock/parlock/lib/lockmgr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// SimCmd represents the sim command
	SimCmd = &cobra.Command{
		Use:     "sim",
		Short:   "Contention simulator for the lock manager",
		Long:    "Runs a configurable number of parallel workers against one lock manager, each repeatedly acquiring a random bundle of resources, and prints contention statistics afterwards.",
		RunE:    run,
		PreRunE: processSimConfig,
	}

	simWorkers    = 8
	simResources  = 16
	simBundleSize = 3
	simIterations = 100
	simSharedPct  = 50
	simHoldMillis = 1
	simVerbose    = false
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// add flags
	key := "workers"
	SimCmd.Flags().Int(key, 8, util.WrapString("Number of parallel workers"))
	key = "resources"
	SimCmd.Flags().Int(key, 16, util.WrapString("Size of the resource universe"))
	key = "bundle-size"
	SimCmd.Flags().Int(key, 3, util.WrapString("Maximum number of resources per bundle"))
	key = "iterations"
	SimCmd.Flags().Int(key, 100, util.WrapString("Acquisitions per worker"))
	key = "shared-pct"
	SimCmd.Flags().Int(key, 50, util.WrapString("Percentage of entries requested in shared mode"))
	key = "hold-millis"
	SimCmd.Flags().Int(key, 1, util.WrapString("How long each worker holds its bundle (in ms)"))
	key = "verbose"
	SimCmd.Flags().Bool(key, false, util.WrapString("Log every grant and release at debug level"))
}

// processSimConfig reads the simulator configuration from flags and environment
func processSimConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	simWorkers = viper.GetInt("workers")
	simResources = viper.GetInt("resources")
	simBundleSize = viper.GetInt("bundle-size")
	simIterations = viper.GetInt("iterations")
	simSharedPct = viper.GetInt("shared-pct")
	simHoldMillis = viper.GetInt("hold-millis")
	simVerbose = viper.GetBool("verbose")

	if simWorkers < 1 || simResources < 1 || simIterations < 1 {
		return fmt.Errorf("workers, resources and iterations must all be >= 1")
	}
	if simBundleSize < 1 || simBundleSize > simResources {
		return fmt.Errorf("bundle-size must be between 1 and resources (%d)", simResources)
	}

	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Contention simulator for the parlock lock manager")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Workers: %d\n", simWorkers)
	fmt.Printf("Resources: %d\n", simResources)
	fmt.Printf("Bundle size: 1-%d\n", simBundleSize)
	fmt.Printf("Iterations per worker: %d\n", simIterations)
	fmt.Printf("Shared mode: %d%%\n", simSharedPct)
	fmt.Printf("Hold time: %dms\n", simHoldMillis)
	fmt.Println()

	logger := zerolog.Nop()
	if simVerbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	mgr := lockmgr.NewLockManager(logger)

	universe := make([]string, simResources)
	for i := range universe {
		universe[i] = fmt.Sprintf("resource-%03d", i)
	}

	fmt.Println("starting workers...")
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < simWorkers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			for i := 0; i < simIterations; i++ {
				bundle, err := randomBundle(rng, universe)
				if err != nil {
					// A generated bundle is always well-formed, treat this as fatal.
					panic(err)
				}

				handle, err := mgr.AcquireAll(bundle)
				if err != nil {
					panic(err)
				}
				if simHoldMillis > 0 {
					time.Sleep(time.Duration(simHoldMillis) * time.Millisecond)
				}
				if err := handle.Release(); err != nil {
					panic(err)
				}
			}
		}(int64(w) + 1)
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := simWorkers * simIterations

	printSummary(mgr, total, elapsed)
	return nil
}

// randomBundle picks 1..simBundleSize distinct resources from the universe
// and assigns each one a mode according to the configured shared ratio.
func randomBundle(rng *rand.Rand, universe []string) (*lockmgr.Bundle, error) {
	size := 1 + rng.Intn(simBundleSize)
	perm := rng.Perm(len(universe))

	entries := make([]lockmgr.Entry, size)
	for i := 0; i < size; i++ {
		resource := universe[perm[i]]
		if rng.Intn(100) < simSharedPct {
			entries[i] = lockmgr.Shared(resource)
		} else {
			entries[i] = lockmgr.Exclusive(resource)
		}
	}
	return lockmgr.NewBundle(entries...)
}

// printSummary prints manager statistics, the most contended resources and
// the Prometheus metrics dump.
func printSummary(mgr lockmgr.ILockManager, total int, elapsed time.Duration) {
	stats := mgr.Stats()

	fmt.Println()
	fmt.Println("Results:")
	fmt.Printf("Total bundles: %d in %v (%.0f bundles/s)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Printf("Grants: %d, releases: %d\n", stats.Grants, stats.Releases)
	fmt.Printf("Contended: %d (%.1f%%)\n", stats.Contended, 100*float64(stats.Contended)/float64(stats.Grants))
	fmt.Printf("Wait times: count=%d mean=%v p95=%v\n", stats.WaitCount, stats.WaitMean.Round(time.Microsecond), stats.WaitP95.Round(time.Microsecond))

	// Rank resources by contended acquisitions
	type resLine struct {
		name  string
		stats lockmgr.ResourceStats
	}
	lines := make([]resLine, 0, stats.Resources)
	for name, rs := range mgr.ResourceStats() {
		lines = append(lines, resLine{name: name, stats: rs})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].stats.Contended > lines[j].stats.Contended
	})

	fmt.Println()
	fmt.Println("Most contended resources:")
	for i, l := range lines {
		if i == 10 {
			break
		}
		fmt.Printf("%-16s acquires=%-6d contended=%d\n", l.name, l.stats.Acquires, l.stats.Contended)
	}

	fmt.Println()
	fmt.Println("Metrics:")
	metrics.WritePrometheus(os.Stdout, false)
}
