package judge

import (
	"fmt"
	"sort"

	"mercator-hq/saturn/pkg/evaluator"
)

// buildExplanation assembles the audit-trail explanation attached to every
// result: a human-readable summary, the factors that drove the decision,
// and which evaluator(s) produced it.
func buildExplanation(decision evaluator.Decision, source string, policy Policy, ruleOut *evaluator.RuleOutcome, llmOut *evaluator.LLMOutcome) map[string]any {
	var summary string
	switch decision {
	case evaluator.DecisionOK:
		summary = "Reading is within normal parameters."
	case evaluator.DecisionWarning:
		summary = "Reading is abnormal and needs attention."
	case evaluator.DecisionCritical:
		summary = "Reading requires immediate action."
	default:
		summary = "No judgment could be made."
	}

	factors := []any{}
	sourceDetails := map[string]any{}

	switch source {
	case "rule", "rule_fallback":
		sourceDetails["type"] = "rule_based"
		if ruleOut != nil && ruleOut.Success {
			for _, f := range checkFactors(ruleOut.Raw) {
				factors = append(factors, f)
			}
			sourceDetails["ruleset_name"] = ruleOut.RulesetName
			sourceDetails["ruleset_version"] = ruleOut.RulesetVersion
		}
	case "llm", "llm_fallback", "llm_escalated":
		sourceDetails["type"] = "llm_based"
		if llmOut != nil {
			factors = append(factors, map[string]any{
				"factor":    "llm_reasoning",
				"reasoning": llmOut.Reasoning,
			})
			sourceDetails["model"] = llmOut.Model
		}
	default:
		sourceDetails["type"] = "hybrid"
		if ruleOut != nil && ruleOut.Success {
			factors = append(factors, map[string]any{
				"factor":     "rule_decision",
				"decision":   evaluator.ExtractDecision(ruleOut.Raw),
				"confidence": evaluator.RuleConfidence(*ruleOut),
			})
		}
		if llmOut != nil {
			factors = append(factors, map[string]any{
				"factor":     "llm_decision",
				"decision":   llmOut.Decision,
				"confidence": llmOut.Confidence,
				"reasoning":  llmOut.Reasoning,
			})
		}
	}

	return map[string]any{
		"summary":          summary,
		"decision_factors": factors,
		"source_details":   sourceDetails,
		"policy":           string(policy),
	}
}

func checkFactors(raw map[string]any) []map[string]any {
	checks, _ := raw["checks"].([]any)
	var out []map[string]any
	for _, c := range checks {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"factor": stringOr(m["name"], "unknown"),
			"status": stringOr(m["status"], "unknown"),
		})
	}
	return out
}

// extractEvidence lists the data points the judgment rested on: numeric
// sensor values from the input, rule check results, and the inference
// decision when present. Input keys are sorted so the trail is stable.
func extractEvidence(input map[string]any, ruleOut *evaluator.RuleOutcome, llmOut *evaluator.LLMOutcome) []string {
	var evidence []string

	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := input[k].(type) {
		case float64, float32, int, int64:
			evidence = append(evidence, fmt.Sprintf("sensor:%s=%v", k, v))
		}
	}

	if ruleOut != nil && ruleOut.Success {
		checks, _ := ruleOut.Raw["checks"].([]any)
		for _, c := range checks {
			m, ok := c.(map[string]any)
			if !ok {
				continue
			}
			evidence = append(evidence,
				fmt.Sprintf("rule_check:%s=%s", stringOr(m["name"], "unknown"), stringOr(m["status"], "unknown")))
		}
	}

	if llmOut != nil && llmOut.Decision != "" {
		evidence = append(evidence, fmt.Sprintf("llm_decision:%s", llmOut.Decision))
	}

	return evidence
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
