// Package main is the entry point for the gaugeboard CLI.
//
// GaugeBoard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	gaugeboard serve -c config.yaml    # Start the board
//	gaugeboard validate -c config.yaml # Validate configuration
//	gaugeboard version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "gaugeboard",
	Short: "A lightweight live-value service for gauge dashboards",
	Long: `GaugeBoard serves numeric live values over a small HTTP API.

In simulated mode a background loop produces a bounded oscillating value;
in static mode a fixed value is served. Dashboards poll the JSON endpoints
or subscribe to the Server-Sent Events stream for live updates.

Quick start:
  1. Create a config file (gaugeboard.yaml)
  2. Run: gaugeboard serve -c gaugeboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  mode: simulated
  simulator:
    low: 0
    high: 180
    speed: 10`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this gaugeboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gaugeboard %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
