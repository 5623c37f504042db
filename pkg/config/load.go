package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and
// validates. Environment variables are not consulted; use LoadWithEnv for
// the full loading sequence.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadWithEnv loads configuration from a YAML file and applies SATURN_*
// environment variable overrides, which always win over file values. The
// sequence is: file, defaults, environment, validate.
func LoadWithEnv(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies SATURN_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.ListenAddress, "SATURN_SERVER_LISTEN_ADDRESS")
	setDuration(&cfg.Server.ReadTimeout, "SATURN_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "SATURN_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "SATURN_SERVER_IDLE_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "SATURN_SERVER_SHUTDOWN_TIMEOUT")

	setString(&cfg.Engine.DefaultPolicy, "SATURN_ENGINE_DEFAULT_POLICY")
	setFloat(&cfg.Engine.RuleWeight, "SATURN_ENGINE_RULE_WEIGHT")
	setFloat(&cfg.Engine.LLMWeight, "SATURN_ENGINE_LLM_WEIGHT")

	setString(&cfg.Cache.Backend, "SATURN_CACHE_BACKEND")
	setString(&cfg.Cache.Path, "SATURN_CACHE_PATH")
	setDuration(&cfg.Cache.TTL, "SATURN_CACHE_TTL")
	setInt(&cfg.Cache.MaxEntries, "SATURN_CACHE_MAX_ENTRIES")
	setString(&cfg.Cache.PruneSchedule, "SATURN_CACHE_PRUNE_SCHEDULE")

	setString(&cfg.Rulesets.Backend, "SATURN_RULESETS_BACKEND")
	setString(&cfg.Rulesets.Path, "SATURN_RULESETS_PATH")
	setBool(&cfg.Rulesets.Watch, "SATURN_RULESETS_WATCH")

	setString(&cfg.Inference.Model, "SATURN_INFERENCE_MODEL")
	setInt(&cfg.Inference.MaxTokens, "SATURN_INFERENCE_MAX_TOKENS")
	setString(&cfg.Inference.APIKeyEnv, "SATURN_INFERENCE_API_KEY_ENV")

	setInt(&cfg.Breakers.FailureThreshold, "SATURN_BREAKERS_FAILURE_THRESHOLD")
	setDuration(&cfg.Breakers.RecoveryTimeout, "SATURN_BREAKERS_RECOVERY_TIMEOUT")
	setInt(&cfg.Breakers.SuccessThreshold, "SATURN_BREAKERS_SUCCESS_THRESHOLD")
	setDuration(&cfg.Breakers.SlidingWindow, "SATURN_BREAKERS_SLIDING_WINDOW")
	setDuration(&cfg.Breakers.CallTimeout, "SATURN_BREAKERS_CALL_TIMEOUT")

	setString(&cfg.Logging.Level, "SATURN_LOGGING_LEVEL")
	setString(&cfg.Logging.Format, "SATURN_LOGGING_FORMAT")

	setBool(&cfg.Metrics.Enabled, "SATURN_METRICS_ENABLED")
	setString(&cfg.Metrics.Namespace, "SATURN_METRICS_NAMESPACE")
	setString(&cfg.Metrics.Subsystem, "SATURN_METRICS_SUBSYSTEM")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}
