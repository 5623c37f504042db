package evaluator

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ThresholdRunner is the built-in ScriptRunner. Scripts are declarative
// YAML check lists rather than executable code, which keeps evaluation
// sandboxed by construction:
//
//	checks:
//	  - name: temperature-high
//	    field: temperature
//	    op: lte
//	    value: 80
//	    severity: CRITICAL
//	confidence: 0.9
//
// Each check compares an input field against a threshold; a passing check
// reports OK and a failing one reports the check's severity. The result map
// uses the same shape the decision normalizer consumes.
type ThresholdRunner struct{}

type thresholdScript struct {
	Checks []thresholdCheck `yaml:"checks"`
	// Confidence optionally overrides the derived confidence score.
	Confidence *float64 `yaml:"confidence"`
}

type thresholdCheck struct {
	Name     string  `yaml:"name"`
	Field    string  `yaml:"field"`
	Op       string  `yaml:"op"`
	Value    float64 `yaml:"value"`
	Severity string  `yaml:"severity"`
}

func NewThresholdRunner() *ThresholdRunner { return &ThresholdRunner{} }

func (r *ThresholdRunner) Run(ctx context.Context, script string, input map[string]any) (map[string]any, error) {
	var parsed thresholdScript
	if err := yaml.Unmarshal([]byte(script), &parsed); err != nil {
		return nil, fmt.Errorf("invalid rule script: %w", err)
	}
	if len(parsed.Checks) == 0 {
		return nil, fmt.Errorf("rule script has no checks")
	}

	results := make([]any, 0, len(parsed.Checks))
	for _, check := range parsed.Checks {
		status, err := runCheck(check, input)
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", check.Name, err)
		}
		results = append(results, map[string]any{
			"name":   check.Name,
			"status": status,
		})
	}

	out := map[string]any{"checks": results}
	if parsed.Confidence != nil {
		out["confidence"] = *parsed.Confidence
	}
	return out, nil
}

func runCheck(check thresholdCheck, input map[string]any) (string, error) {
	value, ok := lookupField(input, check.Field)
	if !ok {
		return "", fmt.Errorf("field %q not present in input", check.Field)
	}
	n, ok := asFloat(value)
	if !ok {
		return "", fmt.Errorf("field %q is not numeric", check.Field)
	}

	var pass bool
	switch check.Op {
	case "lt":
		pass = n < check.Value
	case "lte":
		pass = n <= check.Value
	case "gt":
		pass = n > check.Value
	case "gte":
		pass = n >= check.Value
	case "eq":
		pass = n == check.Value
	case "ne":
		pass = n != check.Value
	default:
		return "", fmt.Errorf("unknown op %q", check.Op)
	}

	if pass {
		return string(DecisionOK), nil
	}
	severity := check.Severity
	if severity == "" {
		severity = string(DecisionWarning)
	}
	return severity, nil
}

// lookupField resolves a dotted path through nested maps.
func lookupField(input map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = input
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
