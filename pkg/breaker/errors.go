package breaker

import (
	"fmt"
	"time"
)

// OpenError is returned when a call is rejected because the breaker is open
// and no fallback is configured. RetryAfter carries the remaining cooldown
// before the breaker will allow a half-open probe.
type OpenError struct {
	// Name is the breaker that rejected the call.
	Name string

	// RetryAfter is the remaining recovery cooldown.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit %q is open, retry after %s", e.Name, e.RetryAfter.Round(time.Millisecond))
}

// CallTimeoutError is returned when the protected operation exceeds the
// configured call timeout. The timeout is always recorded as a failure.
type CallTimeoutError struct {
	// Name is the breaker whose call timed out.
	Name string

	// Timeout is the configured per-call deadline.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *CallTimeoutError) Error() string {
	return fmt.Sprintf("circuit %q call timed out after %s", e.Name, e.Timeout)
}
