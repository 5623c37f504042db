package breaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State is the breaker state.
type State string

const (
	// Closed allows all calls through.
	Closed State = "closed"
	// Open rejects all calls until the recovery timeout elapses.
	Open State = "open"
	// HalfOpen allows probe calls to test whether the resource recovered.
	HalfOpen State = "half_open"
)

// Operation is a protected call. It receives a context carrying the
// breaker's call deadline and returns a result or an error.
type Operation func(ctx context.Context) (any, error)

// Fallback is invoked instead of the operation when the breaker is open,
// or after a recorded failure, when configured.
type Fallback func(ctx context.Context) (any, error)

// Breaker is a named circuit breaker instance. Use Registry.GetOrCreate to
// obtain one; a Breaker must not be copied after first use.
type Breaker struct {
	name     string
	config   Config
	fallback Fallback
	logger   *slog.Logger

	mu                sync.Mutex
	state             State
	failureTimes      []time.Time
	halfOpenSuccesses int
	lastTransition    time.Time
	stats             Stats
}

// New creates a standalone breaker. Most callers should go through a
// Registry instead so that breakers are shared per resource name.
func New(name string, config Config, fallback Fallback) *Breaker {
	return &Breaker{
		name:           name,
		config:         config.normalize(),
		fallback:       fallback,
		logger:         slog.Default().With("component", "breaker", "circuit", name),
		state:          Closed,
		lastTransition: time.Now(),
	}
}

// Name returns the breaker's resource name.
func (b *Breaker) Name() string { return b.name }

// State returns the current state, applying the lazy open-to-half-open
// transition when the recovery timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(time.Now())
}

// Execute runs op under the breaker's protection. It returns the operation's
// result, the fallback's result if the breaker is open or the call fails and
// a fallback is configured, or an error. When the breaker is open and no
// fallback exists, the error is an *OpenError carrying the remaining
// cooldown. A call exceeding the configured timeout is recorded as a failure
// and surfaces as a *CallTimeoutError.
func (b *Breaker) Execute(ctx context.Context, op Operation) (any, error) {
	if err := b.Allow(); err != nil {
		if b.fallback != nil {
			b.logger.Warn("circuit open, serving fallback")
			return b.fallback(ctx)
		}
		return nil, err
	}

	result, err := b.run(ctx, op)
	if err == nil {
		b.RecordSuccess()
		return result, nil
	}

	if b.config.IsIgnored != nil && b.config.IsIgnored(err) {
		// Ignored errors say nothing about the resource's health.
		return nil, err
	}

	if _, timedOut := err.(*CallTimeoutError); timedOut || b.config.IsFailure == nil || b.config.IsFailure(err) {
		b.RecordFailure(err)
		if b.fallback != nil {
			b.logger.Warn("call failed, serving fallback", "error", err)
			return b.fallback(ctx)
		}
	}
	return nil, err
}

// Wrap returns an Operation that runs op through Execute. It is the
// decorator form of Execute.
func (b *Breaker) Wrap(op Operation) Operation {
	return func(ctx context.Context) (any, error) {
		return b.Execute(ctx, op)
	}
}

// Allow is the entry half of the scoped-acquisition form. It counts the
// call, applies the lazy state transition, and returns an *OpenError when
// the call must be rejected. Callers that receive nil must follow up with
// exactly one RecordSuccess or RecordFailure.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.stats.TotalCalls++

	if b.stateLocked(now) == Open {
		b.stats.RejectedCalls++
		remaining := b.config.RecoveryTimeout - now.Sub(b.lastTransition)
		if remaining < 0 {
			remaining = 0
		}
		return &OpenError{Name: b.name, RetryAfter: remaining}
	}
	return nil
}

// RecordSuccess records a successful protected call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.stats.SuccessfulCalls++
	b.stats.LastSuccessAt = now

	if b.state == HalfOpen {
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.config.SuccessThreshold {
			b.transitionLocked(Closed, now)
		}
	}
}

// RecordFailure records a failed protected call and applies the
// closed-to-open and half-open-to-open transitions.
func (b *Breaker) RecordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.stats.FailedCalls++
	b.stats.LastFailureAt = now

	// Keep only failures inside the sliding window, then append this one.
	cutoff := now.Add(-b.config.SlidingWindow)
	kept := b.failureTimes[:0]
	for _, t := range b.failureTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failureTimes = append(kept, now)

	switch b.state {
	case HalfOpen:
		b.transitionLocked(Open, now)
	case Closed:
		if len(b.failureTimes) >= b.config.FailureThreshold {
			b.transitionLocked(Open, now)
		}
	}

	if err != nil {
		b.logger.Warn("failure recorded",
			"error", err,
			"window_failures", len(b.failureTimes),
			"state", b.state,
		)
	}
}

// Reset returns the breaker to the closed state and clears the failure
// window and half-open counter. Cumulative stats are preserved.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = Closed
	b.failureTimes = b.failureTimes[:0]
	b.halfOpenSuccesses = 0
	b.lastTransition = time.Now()
	b.logger.Info("circuit reset")
}

// Status returns a JSON-serializable snapshot of the breaker.
func (b *Breaker) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state := b.stateLocked(now)

	stats := b.stats
	stats.StateChanges = append([]StateChange(nil), b.stats.StateChanges...)

	return Status{
		Name:                b.name,
		State:               state,
		FailureCount:        len(b.failureTimes),
		HalfOpenSuccesses:   b.halfOpenSuccesses,
		TimeSinceTransition: now.Sub(b.lastTransition),
		FailureThreshold:    b.config.FailureThreshold,
		RecoveryTimeout:     b.config.RecoveryTimeout,
		SuccessThreshold:    b.config.SuccessThreshold,
		Stats:               stats,
	}
}

// run executes op with the call timeout enforced, even when op does not
// honor context cancellation.
func (b *Breaker) run(ctx context.Context, op Operation) (any, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.config.CallTimeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := op(callCtx)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if errors.Is(out.err, context.DeadlineExceeded) {
			return nil, &CallTimeoutError{Name: b.name, Timeout: b.config.CallTimeout}
		}
		return out.result, out.err
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &CallTimeoutError{Name: b.name, Timeout: b.config.CallTimeout}
		}
		return nil, callCtx.Err()
	}
}

// stateLocked returns the current state, transitioning open breakers to
// half-open once the recovery timeout has elapsed. Caller must hold b.mu.
func (b *Breaker) stateLocked(now time.Time) State {
	if b.state == Open && now.Sub(b.lastTransition) >= b.config.RecoveryTimeout {
		b.transitionLocked(HalfOpen, now)
	}
	return b.state
}

// transitionLocked moves the breaker to a new state and records the change.
// Caller must hold b.mu.
func (b *Breaker) transitionLocked(to State, now time.Time) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.lastTransition = now

	switch to {
	case HalfOpen:
		b.halfOpenSuccesses = 0
	case Closed:
		b.failureTimes = b.failureTimes[:0]
		b.halfOpenSuccesses = 0
	}

	b.stats.StateChanges = append(b.stats.StateChanges, StateChange{From: from, To: to, At: now})
	if len(b.stats.StateChanges) > maxStateChanges {
		b.stats.StateChanges = b.stats.StateChanges[len(b.stats.StateChanges)-maxStateChanges:]
	}

	b.logger.Info("circuit state changed", "from", from, "to", to)
}
