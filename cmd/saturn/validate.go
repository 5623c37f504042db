package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file, apply defaults and environment
overrides, and report validation errors without starting the server.

Examples:
  saturn validate
  saturn validate --config /etc/saturn/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnv(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("Configuration %s is valid.\n", cfgFile)
		fmt.Printf("  server:    %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  policy:    %s (weights %.2f/%.2f)\n",
			cfg.Engine.DefaultPolicy, cfg.Engine.RuleWeight, cfg.Engine.LLMWeight)
		fmt.Printf("  cache:     %s (ttl %s)\n", cfg.Cache.Backend, cfg.Cache.TTL)
		fmt.Printf("  rulesets:  %s (%s)\n", cfg.Rulesets.Backend, cfg.Rulesets.Path)
		fmt.Printf("  inference: %s\n", cfg.Inference.Model)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
