package config

import "time"

// Default returns a fully defaulted configuration, usable without a file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Inference calls can legitimately take minutes.
		cfg.Server.WriteTimeout = 150 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Engine.DefaultPolicy == "" {
		cfg.Engine.DefaultPolicy = "hybrid_weighted"
	}
	if cfg.Engine.RuleWeight == 0 && cfg.Engine.LLMWeight == 0 {
		cfg.Engine.RuleWeight = 0.6
		cfg.Engine.LLMWeight = 0.4
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 10000
	}
	if cfg.Cache.PruneSchedule == "" {
		cfg.Cache.PruneSchedule = "*/10 * * * *"
	}

	if cfg.Rulesets.Backend == "" {
		cfg.Rulesets.Backend = "sqlite"
	}
	if cfg.Rulesets.Path == "" {
		if cfg.Rulesets.Backend == "file" {
			cfg.Rulesets.Path = "./rulesets"
		} else {
			cfg.Rulesets.Path = "./saturn-rulesets.db"
		}
	}

	cfg.Inference.ApplyDefaults()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "saturn"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "judge"
	}
}
