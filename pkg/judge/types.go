package judge

import (
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/evaluator"
)

// Policy selects how the two evaluators are combined.
type Policy string

const (
	// PolicyRuleOnly runs only the rule evaluator. Fastest, least flexible.
	PolicyRuleOnly Policy = "rule_only"
	// PolicyLLMOnly runs only the inference evaluator.
	PolicyLLMOnly Policy = "llm_only"
	// PolicyRuleFallback prefers the rule result and falls back to
	// inference when the rule evaluation fails outright.
	PolicyRuleFallback Policy = "rule_fallback"
	// PolicyLLMFallback prefers the inference result and falls back to the
	// rule evaluator when inference fails or is uncertain.
	PolicyLLMFallback Policy = "llm_fallback"
	// PolicyHybridWeighted runs both evaluators concurrently and combines
	// their confidences by weight. The default policy.
	PolicyHybridWeighted Policy = "hybrid_weighted"
	// PolicyHybridGate uses the rule result alone when its confidence
	// clears the gate threshold, otherwise consults inference and compares.
	PolicyHybridGate Policy = "hybrid_gate"
	// PolicyEscalate uses the rule result when confident and escalates the
	// final decision to inference when not.
	PolicyEscalate Policy = "escalate"
)

// DefaultPolicy is applied when a request does not name a policy.
const DefaultPolicy = PolicyHybridWeighted

// Confidence thresholds and combination factors. These are judgment
// semantics, not tunables: changing them changes what a cached or combined
// confidence means across tenants.
const (
	// RuleConfidenceThreshold is the minimum rule confidence for ESCALATE
	// to accept the rule result without consulting inference. The
	// comparison is inclusive: exactly meeting the threshold does not
	// escalate.
	RuleConfidenceThreshold = 0.8
	// GateThreshold is the rule confidence above which HYBRID_GATE skips
	// inference entirely.
	GateThreshold = 0.85
	// CacheWriteThreshold is the minimum confidence for a result to be
	// written to the cache.
	CacheWriteThreshold = 0.7
	// ConsensusBonusGate boosts the averaged confidence when both
	// evaluators agree under HYBRID_GATE.
	ConsensusBonusGate = 1.15
	// ConsensusBonusWeighted boosts the weighted confidence when both
	// evaluators agree under HYBRID_WEIGHTED.
	ConsensusBonusWeighted = 1.1
	// DisagreementPenalty discounts the winning confidence when the
	// evaluators disagree under HYBRID_GATE.
	DisagreementPenalty = 0.9

	DefaultRuleWeight = 0.6
	DefaultLLMWeight  = 0.4
)

// Valid reports whether p is one of the seven policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyRuleOnly, PolicyLLMOnly, PolicyRuleFallback, PolicyLLMFallback,
		PolicyHybridWeighted, PolicyHybridGate, PolicyEscalate:
		return true
	}
	return false
}

// ParsePolicy parses a policy name. Empty selects the default; anything
// else unrecognized is an *UnknownPolicyError.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return DefaultPolicy, nil
	}
	p := Policy(s)
	if !p.Valid() {
		return "", &UnknownPolicyError{Policy: s}
	}
	return p, nil
}

// Request is one judgment to perform.
type Request struct {
	TenantID  uuid.UUID      `json:"tenant_id"`
	RulesetID uuid.UUID      `json:"ruleset_id"`
	Input     map[string]any `json:"input"`
	Policy    Policy         `json:"policy,omitempty"`
	// Context carries optional operator context (line code, shift, ...)
	// passed to the inference evaluator. It does not affect the cache key.
	Context map[string]any `json:"context,omitempty"`
}

// JudgmentResult is the outcome of one judgment.
type JudgmentResult struct {
	Decision        evaluator.Decision      `json:"decision"`
	Confidence      float64                 `json:"confidence"`
	Source          string                  `json:"source"`
	PolicyUsed      Policy                  `json:"policy_used"`
	Details         map[string]any          `json:"details,omitempty"`
	RuleResult      *evaluator.RuleOutcome  `json:"rule_result,omitempty"`
	LLMResult       *evaluator.LLMOutcome   `json:"llm_result,omitempty"`
	ExecutionTimeMs int64                   `json:"execution_time_ms"`
	Cached          bool                    `json:"cached"`
	Timestamp       time.Time               `json:"timestamp"`
	Explanation     map[string]any          `json:"explanation,omitempty"`
	Evidence        []string                `json:"evidence,omitempty"`
}
