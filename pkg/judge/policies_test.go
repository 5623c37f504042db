package judge

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/evaluator"
)

var (
	testTenantID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testRulesetID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type fakeRule struct {
	out   evaluator.RuleOutcome
	calls int
}

func (f *fakeRule) Evaluate(ctx context.Context, tenantID, rulesetID uuid.UUID, input map[string]any) evaluator.RuleOutcome {
	f.calls++
	return f.out
}

type fakeLLM struct {
	out   evaluator.LLMOutcome
	calls int
}

func (f *fakeLLM) Evaluate(ctx context.Context, input, extra map[string]any) evaluator.LLMOutcome {
	f.calls++
	return f.out
}

// ruleOutcome builds a successful rule outcome with an explicit decision
// and confidence.
func ruleOutcome(decision evaluator.Decision, confidence float64) evaluator.RuleOutcome {
	return evaluator.RuleOutcome{
		Success: true,
		Raw: map[string]any{
			"decision":   string(decision),
			"confidence": confidence,
		},
		RulesetName:    "test",
		RulesetVersion: 1,
	}
}

func ruleFailure(msg string) evaluator.RuleOutcome {
	return evaluator.RuleOutcome{Err: msg}
}

func llmOutcome(decision evaluator.Decision, confidence float64) evaluator.LLMOutcome {
	return evaluator.LLMOutcome{
		Success:    true,
		Decision:   decision,
		Confidence: confidence,
		Reasoning:  "because",
		Model:      "test-model",
	}
}

func llmFailure(msg string) evaluator.LLMOutcome {
	return evaluator.LLMOutcome{Decision: evaluator.DecisionUnknown, Confidence: 0.0, Err: msg}
}

func newTestEngine(rule *fakeRule, llm *fakeLLM, opts Options) *Engine {
	return NewEngine(rule, llm, nil, opts)
}

func judgeWith(t *testing.T, e *Engine, policy Policy) *JudgmentResult {
	t.Helper()
	result, err := e.Judge(context.Background(), Request{
		TenantID:  testTenantID,
		RulesetID: testRulesetID,
		Input:     map[string]any{"temperature": 75.0},
		Policy:    policy,
	})
	if err != nil {
		t.Fatalf("Judge() error = %v", err)
	}
	return result
}

func TestRuleOnly(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionWarning, 0.9)}
	llm := &fakeLLM{}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyRuleOnly)

	if result.Decision != evaluator.DecisionWarning || result.Confidence != 0.9 {
		t.Errorf("result = %v/%v, want WARNING/0.9", result.Decision, result.Confidence)
	}
	if result.Source != "rule" {
		t.Errorf("Source = %q, want rule", result.Source)
	}
	if llm.calls != 0 {
		t.Error("RULE_ONLY consulted inference")
	}
}

func TestRuleOnly_Failure(t *testing.T) {
	rule := &fakeRule{out: ruleFailure("ruleset missing")}
	result := judgeWith(t, newTestEngine(rule, &fakeLLM{}, Options{}), PolicyRuleOnly)

	if result.Decision != evaluator.DecisionUnknown || result.Confidence != 0.0 {
		t.Errorf("result = %v/%v, want UNKNOWN/0.0", result.Decision, result.Confidence)
	}
	if result.Details["error"] != "ruleset missing" {
		t.Errorf("Details[error] = %v", result.Details["error"])
	}
}

func TestLLMOnly(t *testing.T) {
	rule := &fakeRule{}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionCritical, 0.95)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyLLMOnly)

	if result.Decision != evaluator.DecisionCritical || result.Confidence != 0.95 {
		t.Errorf("result = %v/%v, want CRITICAL/0.95", result.Decision, result.Confidence)
	}
	if result.Source != "llm" {
		t.Errorf("Source = %q, want llm", result.Source)
	}
	if rule.calls != 0 {
		t.Error("LLM_ONLY consulted the rule evaluator")
	}
}

func TestRuleFallback_RuleSucceeds(t *testing.T) {
	// Low confidence is not a fallback trigger; only outright failure is.
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.3)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionWarning, 0.9)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyRuleFallback)

	if result.Source != "rule" {
		t.Errorf("Source = %q, want rule", result.Source)
	}
	if result.Confidence != 0.3 {
		t.Errorf("Confidence = %v, want 0.3", result.Confidence)
	}
	if llm.calls != 0 {
		t.Error("fallback triggered on a successful rule evaluation")
	}
	if result.Details["fallback_used"] != false {
		t.Errorf("Details[fallback_used] = %v, want false", result.Details["fallback_used"])
	}
}

func TestRuleFallback_RuleFails(t *testing.T) {
	rule := &fakeRule{out: ruleFailure("sandbox error")}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionWarning, 0.85)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyRuleFallback)

	if result.Source != "llm_fallback" {
		t.Errorf("Source = %q, want llm_fallback", result.Source)
	}
	if result.Decision != evaluator.DecisionWarning || result.Confidence != 0.85 {
		t.Errorf("result = %v/%v, want WARNING/0.85", result.Decision, result.Confidence)
	}
	if result.Details["rule_error"] != "sandbox error" {
		t.Errorf("Details[rule_error] = %v", result.Details["rule_error"])
	}
}

func TestLLMFallback_LLMSucceeds(t *testing.T) {
	rule := &fakeRule{}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionOK, 0.8)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyLLMFallback)

	if result.Source != "llm" {
		t.Errorf("Source = %q, want llm", result.Source)
	}
	if rule.calls != 0 {
		t.Error("rule evaluator consulted although inference succeeded")
	}
}

func TestLLMFallback_LLMUncertain(t *testing.T) {
	// UNKNOWN from a live model is uncertainty, which also falls back.
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.85)}
	llm := &fakeLLM{out: evaluator.LLMOutcome{
		Success: true, Decision: evaluator.DecisionUnknown, Confidence: 0.3,
	}}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyLLMFallback)

	if result.Source != "rule_fallback" {
		t.Errorf("Source = %q, want rule_fallback", result.Source)
	}
	if result.Decision != evaluator.DecisionOK || result.Confidence != 0.85 {
		t.Errorf("result = %v/%v, want OK/0.85", result.Decision, result.Confidence)
	}
}

func TestLLMFallback_BothFail(t *testing.T) {
	rule := &fakeRule{out: ruleFailure("no ruleset")}
	llm := &fakeLLM{out: llmFailure("circuit open")}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyLLMFallback)

	if result.Decision != evaluator.DecisionUnknown || result.Confidence != 0.0 {
		t.Errorf("result = %v/%v, want UNKNOWN/0.0", result.Decision, result.Confidence)
	}
	if result.Source != "none" {
		t.Errorf("Source = %q, want none", result.Source)
	}
	if result.Details["both_failed"] != true {
		t.Error("Details[both_failed] not set")
	}
	if result.Details["llm_error"] != "circuit open" || result.Details["rule_error"] != "no ruleset" {
		t.Errorf("error details = %v / %v", result.Details["llm_error"], result.Details["rule_error"])
	}
}

func TestEscalate_ConfidentRuleSticks(t *testing.T) {
	// Exactly at the threshold: the comparison is inclusive.
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.8)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionCritical, 0.99)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyEscalate)

	if result.Source != "rule" {
		t.Errorf("Source = %q, want rule", result.Source)
	}
	if llm.calls != 0 {
		t.Error("escalated although rule confidence met the threshold")
	}
	if result.Details["escalated"] != false {
		t.Errorf("Details[escalated] = %v, want false", result.Details["escalated"])
	}
}

func TestEscalate_UncertainRuleEscalates(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionWarning, 0.79)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionCritical, 0.9)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyEscalate)

	if result.Source != "llm_escalated" {
		t.Errorf("Source = %q, want llm_escalated", result.Source)
	}
	if result.Decision != evaluator.DecisionCritical || result.Confidence != 0.9 {
		t.Errorf("result = %v/%v, want CRITICAL/0.9", result.Decision, result.Confidence)
	}
	if result.Details["escalated"] != true {
		t.Error("Details[escalated] not set")
	}
	if result.Details["rule_confidence"] != 0.79 {
		t.Errorf("Details[rule_confidence] = %v, want 0.79", result.Details["rule_confidence"])
	}
}

func TestEscalate_RuleFailureEscalates(t *testing.T) {
	rule := &fakeRule{out: ruleFailure("boom")}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionOK, 0.7)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyEscalate)

	if result.Source != "llm_escalated" {
		t.Errorf("Source = %q, want llm_escalated", result.Source)
	}
}

func TestHybridGate_GatePasses(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.9)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionCritical, 0.99)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyHybridGate)

	if result.Source != "rule" {
		t.Errorf("Source = %q, want rule", result.Source)
	}
	if llm.calls != 0 {
		t.Error("inference consulted although the gate passed")
	}
	if result.Details["gate_passed"] != true {
		t.Error("Details[gate_passed] not set")
	}
}

func TestHybridGate_Consensus(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionWarning, 0.7)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionWarning, 0.9)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyHybridGate)

	if result.Source != "hybrid_consensus" {
		t.Errorf("Source = %q, want hybrid_consensus", result.Source)
	}
	// Average 0.8 with the consensus bonus, capped and rounded.
	if result.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", result.Confidence)
	}
	if result.Decision != evaluator.DecisionWarning {
		t.Errorf("Decision = %v, want WARNING", result.Decision)
	}
}

func TestHybridGate_ConsensusCapped(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.84)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionOK, 0.98)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyHybridGate)

	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 (capped)", result.Confidence)
	}
}

func TestHybridGate_Disagreement(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.5)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionWarning, 0.9)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyHybridGate)

	// Inference wins on confidence and takes the disagreement penalty.
	if result.Decision != evaluator.DecisionWarning {
		t.Errorf("Decision = %v, want WARNING", result.Decision)
	}
	if result.Confidence != 0.81 {
		t.Errorf("Confidence = %v, want 0.81", result.Confidence)
	}
	if result.Source != "hybrid_llm" {
		t.Errorf("Source = %q, want hybrid_llm", result.Source)
	}
	if result.Details["disagreement_penalty_applied"] != true {
		t.Error("Details[disagreement_penalty_applied] not set")
	}
}

func TestHybridGate_DisagreementRuleWins(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.8)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionCritical, 0.6)}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyHybridGate)

	if result.Decision != evaluator.DecisionOK {
		t.Errorf("Decision = %v, want OK", result.Decision)
	}
	if result.Source != "hybrid_rule" {
		t.Errorf("Source = %q, want hybrid_rule", result.Source)
	}
	if result.Confidence != 0.72 {
		t.Errorf("Confidence = %v, want 0.72", result.Confidence)
	}
}

func TestHybridWeighted_Consensus(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionWarning, 0.8)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionWarning, 0.6)}
	engine := newTestEngine(rule, llm, Options{RuleWeight: 0.5, LLMWeight: 0.5})
	result := judgeWith(t, engine, PolicyHybridWeighted)

	// 0.5*0.8 + 0.5*0.6 = 0.7, consensus bonus lifts it to 0.77.
	if result.Confidence != 0.77 {
		t.Errorf("Confidence = %v, want 0.77", result.Confidence)
	}
	if result.Decision != evaluator.DecisionWarning {
		t.Errorf("Decision = %v, want WARNING", result.Decision)
	}
	if result.Source != "hybrid" {
		t.Errorf("Source = %q, want hybrid", result.Source)
	}
	if rule.calls != 1 || llm.calls != 1 {
		t.Errorf("calls = %d/%d, want both evaluators consulted once", rule.calls, llm.calls)
	}
}

func TestHybridWeighted_DisagreementNoBonus(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 0.9)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionCritical, 0.6)}
	engine := newTestEngine(rule, llm, Options{})
	result := judgeWith(t, engine, PolicyHybridWeighted)

	// Default weights 0.6/0.4: 0.6*0.9 + 0.4*0.6 = 0.78, no bonus.
	if result.Confidence != 0.78 {
		t.Errorf("Confidence = %v, want 0.78", result.Confidence)
	}
	// The more confident evaluator decides.
	if result.Decision != evaluator.DecisionOK {
		t.Errorf("Decision = %v, want OK", result.Decision)
	}
	if result.Details["primary_source"] != "rule" {
		t.Errorf("Details[primary_source] = %v, want rule", result.Details["primary_source"])
	}
}

func TestHybridWeighted_UnknownConsensusGetsNoBonus(t *testing.T) {
	rule := &fakeRule{out: ruleFailure("boom")}
	llm := &fakeLLM{out: llmFailure("down")}
	result := judgeWith(t, newTestEngine(rule, llm, Options{}), PolicyHybridWeighted)

	if result.Decision != evaluator.DecisionUnknown {
		t.Errorf("Decision = %v, want UNKNOWN", result.Decision)
	}
	if result.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0 (agreement on UNKNOWN earns nothing)", result.Confidence)
	}
}

func TestWeightsNormalized(t *testing.T) {
	rule := &fakeRule{out: ruleOutcome(evaluator.DecisionOK, 1.0)}
	llm := &fakeLLM{out: llmOutcome(evaluator.DecisionCritical, 0.0)}
	// 3:1 ratio normalizes to 0.75/0.25.
	engine := newTestEngine(rule, llm, Options{RuleWeight: 3, LLMWeight: 1})
	result := judgeWith(t, engine, PolicyHybridWeighted)

	if result.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", result.Confidence)
	}
}
