// Package main is the entry point for the systune CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systune-io/systune/internal/metrics"
)

// Version information set at build time.
var version = "0.2.0"

// Global flags.
var (
	configPath string
	verbose    bool
)

const defaultConfigPath = "config/local.pkl"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "systune",
		Short: "System maintenance prober and action runner",
		Long: `Systune probes system facts with bounded concurrency, caches the
resulting snapshot, and executes declarative maintenance actions
gated by policy, with full audit records and an emergency restore
path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to Pkl configuration file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newProbeCmd())
	root.AddCommand(newActionsCmd())
	root.AddCommand(newApplyCmd())
	root.AddCommand(newRevertCmd())
	root.AddCommand(newRestoreCmd())
	root.AddCommand(newServeCmd())

	return root
}

func main() {
	metrics.MustRegister()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
