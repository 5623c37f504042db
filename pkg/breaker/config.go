package breaker

import "time"

// Config contains the tuning parameters for a circuit breaker.
// A zero-value field falls back to the corresponding default.
type Config struct {
	// FailureThreshold is the number of failures within the sliding window
	// that opens the breaker.
	FailureThreshold int

	// RecoveryTimeout is how long the breaker stays open before the next
	// access is allowed to probe the protected resource (half-open).
	RecoveryTimeout time.Duration

	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the breaker again.
	SuccessThreshold int

	// SlidingWindow is the trailing interval over which failures are
	// counted toward FailureThreshold. Older failures are discarded.
	SlidingWindow time.Duration

	// CallTimeout is the per-call deadline enforced around the protected
	// operation. A timed-out call is recorded as a failure.
	CallTimeout time.Duration

	// IsFailure classifies an error as a failure for breaker bookkeeping.
	// A nil classifier treats every error as a failure.
	IsFailure func(error) bool

	// IsIgnored marks errors that should be re-returned to the caller
	// without being recorded as either success or failure (e.g. input
	// validation errors that say nothing about the resource's health).
	// A nil classifier ignores nothing.
	IsIgnored func(error) bool
}

// Default configuration values, applied by normalize for zero-value fields.
const (
	DefaultFailureThreshold = 5
	DefaultSuccessThreshold = 2
	DefaultRecoveryTimeout  = 30 * time.Second
	DefaultSlidingWindow    = 60 * time.Second
	DefaultCallTimeout      = 30 * time.Second
)

// DefaultConfig returns the generic breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: DefaultFailureThreshold,
		RecoveryTimeout:  DefaultRecoveryTimeout,
		SuccessThreshold: DefaultSuccessThreshold,
		SlidingWindow:    DefaultSlidingWindow,
		CallTimeout:      DefaultCallTimeout,
	}
}

// InferenceServiceConfig returns the profile for guarding calls to a slow
// inference service: trip fast, recover slowly, allow long calls.
func InferenceServiceConfig() Config {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	cfg.RecoveryTimeout = 60 * time.Second
	cfg.SuccessThreshold = 2
	cfg.CallTimeout = 120 * time.Second
	return cfg
}

// ExternalToolConfig returns the profile for guarding calls to a per-tenant
// external tool endpoint.
func ExternalToolConfig() Config {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 5
	cfg.RecoveryTimeout = 30 * time.Second
	cfg.SuccessThreshold = 3
	cfg.CallTimeout = 30 * time.Second
	return cfg
}

// ExternalAPIConfig returns the profile for guarding calls to a generic
// external HTTP API.
func ExternalAPIConfig() Config {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 5
	cfg.RecoveryTimeout = 45 * time.Second
	cfg.SuccessThreshold = 2
	cfg.CallTimeout = 30 * time.Second
	return cfg
}

// normalize fills zero-value fields with defaults.
func (c Config) normalize() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = DefaultSuccessThreshold
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = DefaultRecoveryTimeout
	}
	if c.SlidingWindow <= 0 {
		c.SlidingWindow = DefaultSlidingWindow
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	return c
}
