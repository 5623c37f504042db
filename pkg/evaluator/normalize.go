package evaluator

import "strings"

// NormalizeDecision maps the free-form severity vocabulary used by rule
// scripts onto the decision scale. Script authors write statuses such as
// STOP_LINE or NOTIFY; anything unrecognized degrades to UNKNOWN.
func NormalizeDecision(value string) Decision {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "CRITICAL", "STOP_LINE", "ALERT":
		return DecisionCritical
	case "WARNING", "HIGH", "NOTIFY":
		return DecisionWarning
	case "OK", "NORMAL", "NONE", "LOG":
		return DecisionOK
	default:
		return DecisionUnknown
	}
}

// ExtractDecision derives a decision from a raw rule-script result. An
// explicit "decision"/"status"/"action" field wins when its value is
// recognized; an unrecognized value falls through to worst-case aggregation
// over a "checks" list, where a list with no critical or warning statuses
// aggregates to OK. A result carrying none of these is UNKNOWN.
func ExtractDecision(raw map[string]any) Decision {
	if raw == nil {
		return DecisionUnknown
	}
	for _, key := range []string{"decision", "status", "action"} {
		if s, ok := raw[key].(string); ok {
			if d := NormalizeDecision(s); d != DecisionUnknown {
				return d
			}
		}
	}
	if checks, ok := raw["checks"].([]any); ok && len(checks) > 0 {
		worst := DecisionOK
		for _, c := range checks {
			m, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := m["status"].(string); ok {
				worst = Worse(worst, NormalizeDecision(s))
			}
		}
		return worst
	}
	return DecisionUnknown
}

// RuleConfidence derives a confidence score from a rule outcome. A failed
// evaluation scores 0. An explicit "confidence" field wins; otherwise a
// "checks" list scores by pass ratio on a 0.8 base, where only OK and
// NORMAL statuses count as passed, and a bare result without either scores
// a flat 0.85.
func RuleConfidence(out RuleOutcome) float64 {
	if !out.Success || out.Raw == nil {
		return 0.0
	}
	if c, ok := asFloat(out.Raw["confidence"]); ok {
		return clamp01(c)
	}
	if checks, ok := out.Raw["checks"].([]any); ok && len(checks) > 0 {
		passed := 0
		for _, c := range checks {
			m, ok := c.(map[string]any)
			if !ok {
				continue
			}
			s, ok := m["status"].(string)
			if !ok {
				continue
			}
			switch strings.ToUpper(strings.TrimSpace(s)) {
			case "OK", "NORMAL":
				passed++
			}
		}
		return clamp01(0.8 + 0.2*float64(passed)/float64(len(checks)))
	}
	return 0.85
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
