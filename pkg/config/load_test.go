package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.ListenAddress != ":8080" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Engine.DefaultPolicy != "hybrid_weighted" {
		t.Errorf("DefaultPolicy = %q", cfg.Engine.DefaultPolicy)
	}
	if cfg.Engine.RuleWeight != 0.6 || cfg.Engine.LLMWeight != 0.4 {
		t.Errorf("weights = %v/%v", cfg.Engine.RuleWeight, cfg.Engine.LLMWeight)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != time.Hour {
		t.Errorf("cache = %q/%v", cfg.Cache.Backend, cfg.Cache.TTL)
	}
	if cfg.Rulesets.Backend != "sqlite" || cfg.Rulesets.Path != "./saturn-rulesets.db" {
		t.Errorf("rulesets = %q/%q", cfg.Rulesets.Backend, cfg.Rulesets.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Metrics.Namespace != "saturn" || cfg.Metrics.Subsystem != "judge" {
		t.Errorf("metrics = %q/%q", cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) error = %v", err)
	}
}

func TestApplyDefaults_FileBackendPath(t *testing.T) {
	cfg := &Config{}
	cfg.Rulesets.Backend = "file"
	ApplyDefaults(cfg)

	if cfg.Rulesets.Path != "./rulesets" {
		t.Errorf("Path = %q, want ./rulesets", cfg.Rulesets.Path)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9090"
  write_timeout: 2m
engine:
  default_policy: escalate
  rule_weight: 0.7
  llm_weight: 0.3
cache:
  backend: sqlite
  path: /tmp/cache.db
  ttl: 30m
rulesets:
  backend: file
  path: ./rules
  watch: true
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ListenAddress != ":9090" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.WriteTimeout != 2*time.Minute {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Engine.DefaultPolicy != "escalate" {
		t.Errorf("DefaultPolicy = %q", cfg.Engine.DefaultPolicy)
	}
	if cfg.Cache.Backend != "sqlite" || cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("cache = %q/%v", cfg.Cache.Backend, cfg.Cache.TTL)
	}
	if !cfg.Rulesets.Watch {
		t.Error("Watch = false")
	}
	// Unset fields still receive defaults.
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Inference.Model == "" {
		t.Error("inference model not defaulted")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() did not fail for a missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("Load() did not fail for invalid YAML")
	}
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9090"
engine:
  default_policy: rule_only
`)
	t.Setenv("SATURN_SERVER_LISTEN_ADDRESS", ":7070")
	t.Setenv("SATURN_ENGINE_DEFAULT_POLICY", "hybrid_gate")
	t.Setenv("SATURN_CACHE_TTL", "45m")
	t.Setenv("SATURN_METRICS_ENABLED", "true")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if cfg.Server.ListenAddress != ":7070" {
		t.Errorf("ListenAddress = %q, env override lost", cfg.Server.ListenAddress)
	}
	if cfg.Engine.DefaultPolicy != "hybrid_gate" {
		t.Errorf("DefaultPolicy = %q, env override lost", cfg.Engine.DefaultPolicy)
	}
	if cfg.Cache.TTL != 45*time.Minute {
		t.Errorf("TTL = %v, env override lost", cfg.Cache.TTL)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, env override lost")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.Engine.DefaultPolicy = "vibes" },
			wantErr: "default_policy",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Engine.RuleWeight = -0.1 },
			wantErr: "negative",
		},
		{
			name: "zero weights",
			mutate: func(c *Config) {
				c.Engine.RuleWeight = 0
				c.Engine.LLMWeight = 0
			},
			wantErr: "both be zero",
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "redis" },
			wantErr: "cache.backend",
		},
		{
			name: "sqlite cache without path",
			mutate: func(c *Config) {
				c.Cache.Backend = "sqlite"
				c.Cache.Path = ""
			},
			wantErr: "cache.path",
		},
		{
			name:    "unknown ruleset backend",
			mutate:  func(c *Config) { c.Rulesets.Backend = "s3" },
			wantErr: "rulesets.backend",
		},
		{
			name:    "watch without file backend",
			mutate:  func(c *Config) { c.Rulesets.Watch = true },
			wantErr: "watch",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
