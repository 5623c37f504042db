package config

import (
	"time"

	"mercator-hq/saturn/pkg/inference"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Engine    EngineConfig     `yaml:"engine"`
	Cache     CacheConfig      `yaml:"cache"`
	Rulesets  RulesetConfig    `yaml:"rulesets"`
	Inference inference.Config `yaml:"inference"`
	Breakers  BreakerConfig    `yaml:"breakers"`
	Logging   LoggingConfig    `yaml:"logging"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// EngineConfig configures judgment combination.
type EngineConfig struct {
	// DefaultPolicy applies when a request does not name one.
	DefaultPolicy string `yaml:"default_policy"`
	// RuleWeight and LLMWeight set the HYBRID_WEIGHTED combination. They
	// are normalized at load so only their ratio matters.
	RuleWeight float64 `yaml:"rule_weight"`
	LLMWeight  float64 `yaml:"llm_weight"`
}

// CacheConfig configures the judgment result cache.
type CacheConfig struct {
	// Backend is "memory" or "sqlite".
	Backend    string        `yaml:"backend"`
	Path       string        `yaml:"path"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	// PruneSchedule is a 5-field cron expression; sqlite backend only.
	PruneSchedule string `yaml:"prune_schedule"`
}

// RulesetConfig configures where rulesets come from.
type RulesetConfig struct {
	// Backend is "sqlite" or "file".
	Backend string `yaml:"backend"`
	// Path is the database file (sqlite) or directory (file).
	Path string `yaml:"path"`
	// Watch enables hot reload for the file backend.
	Watch bool `yaml:"watch"`
}

// BreakerConfig tunes the inference circuit breaker. Zero values keep the
// inference-service profile.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
	SuccessThreshold int           `yaml:"success_threshold"`
	SlidingWindow    time.Duration `yaml:"sliding_window"`
	CallTimeout      time.Duration `yaml:"call_timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}
