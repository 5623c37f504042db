package config

import "fmt"

var validPolicies = map[string]bool{
	"rule_only":       true,
	"llm_only":        true,
	"rule_fallback":   true,
	"llm_fallback":    true,
	"hybrid_weighted": true,
	"hybrid_gate":     true,
	"escalate":        true,
}

// Validate checks a defaulted configuration for inconsistencies.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address cannot be empty")
	}

	if !validPolicies[cfg.Engine.DefaultPolicy] {
		return fmt.Errorf("engine.default_policy: unknown policy %q", cfg.Engine.DefaultPolicy)
	}
	if cfg.Engine.RuleWeight < 0 || cfg.Engine.LLMWeight < 0 {
		return fmt.Errorf("engine weights cannot be negative")
	}
	if cfg.Engine.RuleWeight+cfg.Engine.LLMWeight == 0 {
		return fmt.Errorf("engine weights cannot both be zero")
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "sqlite":
		if cfg.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	switch cfg.Rulesets.Backend {
	case "sqlite", "file":
	default:
		return fmt.Errorf("rulesets.backend: unknown backend %q", cfg.Rulesets.Backend)
	}
	if cfg.Rulesets.Path == "" {
		return fmt.Errorf("rulesets.path cannot be empty")
	}
	if cfg.Rulesets.Watch && cfg.Rulesets.Backend != "file" {
		return fmt.Errorf("rulesets.watch requires the file backend")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}

	return nil
}
