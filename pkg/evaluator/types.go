package evaluator

// Decision is the judgment severity scale. The four values are ordered:
// OK < WARNING < CRITICAL, with UNKNOWN reserved for cases where neither
// evaluator produced a usable result.
type Decision string

const (
	DecisionOK       Decision = "OK"
	DecisionWarning  Decision = "WARNING"
	DecisionCritical Decision = "CRITICAL"
	DecisionUnknown  Decision = "UNKNOWN"
)

// severity orders decisions for worst-case aggregation. UNKNOWN sits below
// OK so that a run of unknown checks never masks a real finding.
func severity(d Decision) int {
	switch d {
	case DecisionCritical:
		return 3
	case DecisionWarning:
		return 2
	case DecisionOK:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two decisions.
func Worse(a, b Decision) Decision {
	if severity(b) > severity(a) {
		return b
	}
	return a
}

// RuleOutcome is the result of one rule-script evaluation. Success false
// means the script could not produce a result (missing ruleset, sandbox
// error, invalid script); Err carries the reason and Raw is nil.
type RuleOutcome struct {
	Success        bool           `json:"success"`
	Raw            map[string]any `json:"raw,omitempty"`
	RulesetName    string         `json:"ruleset_name,omitempty"`
	RulesetVersion int            `json:"ruleset_version,omitempty"`
	Err            string         `json:"error,omitempty"`
}

// LLMOutcome is the result of one inference evaluation, already parsed and
// normalized. Success false means the call failed in transport, was rejected
// by the circuit breaker, or returned an unparseable response; the Decision
// and Confidence fields then carry the degraded values, not zero values.
type LLMOutcome struct {
	Success     bool     `json:"success"`
	Decision    Decision `json:"decision"`
	Confidence  float64  `json:"confidence"`
	Reasoning   string   `json:"reasoning,omitempty"`
	Model       string   `json:"model,omitempty"`
	RawResponse string   `json:"-"`
	Err         string   `json:"error,omitempty"`
}
