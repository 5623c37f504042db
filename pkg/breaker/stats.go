package breaker

import "time"

// maxStateChanges bounds the per-breaker transition history kept for
// observability. Older transitions are dropped.
const maxStateChanges = 32

// StateChange records a single breaker transition.
type StateChange struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Stats holds cumulative counters for a breaker. Counters are monotonic for
// the lifetime of the breaker; Reset does not clear them.
type Stats struct {
	TotalCalls      int64         `json:"total_calls"`
	SuccessfulCalls int64         `json:"successful_calls"`
	FailedCalls     int64         `json:"failed_calls"`
	RejectedCalls   int64         `json:"rejected_calls"`
	LastFailureAt   time.Time     `json:"last_failure_at,omitzero"`
	LastSuccessAt   time.Time     `json:"last_success_at,omitzero"`
	StateChanges    []StateChange `json:"recent_state_changes,omitempty"`
}

// SuccessRate returns the ratio of successful to total calls.
// An idle breaker reports 1.0.
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 1.0
	}
	return float64(s.SuccessfulCalls) / float64(s.TotalCalls)
}

// Status is a JSON-serializable snapshot of a breaker, suitable for an
// operational dashboard.
type Status struct {
	Name                string        `json:"name"`
	State               State         `json:"state"`
	FailureCount        int           `json:"failure_count"`
	HalfOpenSuccesses   int           `json:"half_open_successes"`
	TimeSinceTransition time.Duration `json:"time_since_transition"`
	FailureThreshold    int           `json:"failure_threshold"`
	RecoveryTimeout     time.Duration `json:"recovery_timeout"`
	SuccessThreshold    int           `json:"success_threshold"`
	Stats               Stats         `json:"stats"`
}
