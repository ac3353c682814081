// Package cmd implements the command-line interface for the parlock
// developer tooling. The lock manager itself is an in-process library with
// no CLI contract; the commands here exist to exercise it.
//
// The package is organized into several subpackages:
//
//   - sim: Contention simulator that drives the manager under parallel load
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See parlock -help for a list of all commands.
package cmd
