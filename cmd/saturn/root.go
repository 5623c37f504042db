package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - hybrid judgment engine for sensor readings",
	Long: `Saturn judges sensor readings as OK, WARNING, CRITICAL or UNKNOWN by
combining a fast rule evaluator with an LLM evaluator under a judgment
policy.

It provides:
  - Seven judgment policies, from rule-only to weighted hybrid
  - Tenant-scoped versioned rulesets (SQLite or hot-reloaded files)
  - Circuit-breaker protection around the inference service
  - A confidence-gated result cache keyed by input fingerprint
  - Prometheus metrics and a breaker status API`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
