package judge

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"mercator-hq/saturn/pkg/evaluator"
)

// ruleOnly judges with the rule evaluator alone. A failed evaluation is
// UNKNOWN with zero confidence; there is nothing to fall back to.
func (e *Engine) ruleOnly(ctx context.Context, req Request) *JudgmentResult {
	ruleOut := e.rule.Evaluate(ctx, req.TenantID, req.RulesetID, req.Input)

	if !ruleOut.Success {
		return &JudgmentResult{
			Decision:    evaluator.DecisionUnknown,
			Confidence:  0.0,
			Source:      "rule",
			RuleResult:  &ruleOut,
			Details:     map[string]any{"error": ruleOut.Err},
			Explanation: buildExplanation(evaluator.DecisionUnknown, "rule", PolicyRuleOnly, &ruleOut, nil),
			Evidence:    extractEvidence(req.Input, &ruleOut, nil),
		}
	}

	decision := evaluator.ExtractDecision(ruleOut.Raw)
	return &JudgmentResult{
		Decision:    decision,
		Confidence:  evaluator.RuleConfidence(ruleOut),
		Source:      "rule",
		RuleResult:  &ruleOut,
		Details:     map[string]any{"checks": ruleOut.Raw["checks"]},
		Explanation: buildExplanation(decision, "rule", PolicyRuleOnly, &ruleOut, nil),
		Evidence:    extractEvidence(req.Input, &ruleOut, nil),
	}
}

// llmOnly judges with the inference evaluator alone. The adapter already
// degraded failures into the outcome's decision and confidence.
func (e *Engine) llmOnly(ctx context.Context, req Request) *JudgmentResult {
	llmOut := e.llm.Evaluate(ctx, req.Input, req.Context)

	return &JudgmentResult{
		Decision:    llmOut.Decision,
		Confidence:  llmOut.Confidence,
		Source:      "llm",
		LLMResult:   &llmOut,
		Details:     map[string]any{"reasoning": llmOut.Reasoning},
		Explanation: buildExplanation(llmOut.Decision, "llm", PolicyLLMOnly, nil, &llmOut),
		Evidence:    extractEvidence(req.Input, nil, &llmOut),
	}
}

// ruleFallback prefers the rule result and consults inference only when
// the rule evaluation fails outright. Low rule confidence does not trigger
// the fallback; that distinction belongs to ESCALATE.
func (e *Engine) ruleFallback(ctx context.Context, req Request) *JudgmentResult {
	ruleOut := e.rule.Evaluate(ctx, req.TenantID, req.RulesetID, req.Input)

	if ruleOut.Success {
		decision := evaluator.ExtractDecision(ruleOut.Raw)
		return &JudgmentResult{
			Decision:    decision,
			Confidence:  evaluator.RuleConfidence(ruleOut),
			Source:      "rule",
			RuleResult:  &ruleOut,
			Details:     map[string]any{"fallback_used": false},
			Explanation: buildExplanation(decision, "rule", PolicyRuleFallback, &ruleOut, nil),
			Evidence:    extractEvidence(req.Input, &ruleOut, nil),
		}
	}

	e.logger.Info("rule evaluation failed, falling back to inference", "error", ruleOut.Err)
	llmOut := e.llm.Evaluate(ctx, req.Input, req.Context)

	return &JudgmentResult{
		Decision:   llmOut.Decision,
		Confidence: llmOut.Confidence,
		Source:     "llm_fallback",
		RuleResult: &ruleOut,
		LLMResult:  &llmOut,
		Details: map[string]any{
			"fallback_used": true,
			"rule_error":    ruleOut.Err,
			"reasoning":     llmOut.Reasoning,
		},
		Explanation: buildExplanation(llmOut.Decision, "llm_fallback", PolicyRuleFallback, &ruleOut, &llmOut),
		Evidence:    extractEvidence(req.Input, &ruleOut, &llmOut),
	}
}

// llmFallback prefers the inference result and falls back to the rule
// evaluator when inference fails, returns UNKNOWN, or reports zero
// confidence. When both evaluators fail the result is UNKNOWN from source
// "none" with both errors recorded.
func (e *Engine) llmFallback(ctx context.Context, req Request) *JudgmentResult {
	llmOut := e.llm.Evaluate(ctx, req.Input, req.Context)

	if llmOut.Err == "" && llmOut.Decision != evaluator.DecisionUnknown && llmOut.Confidence > 0 {
		return &JudgmentResult{
			Decision:   llmOut.Decision,
			Confidence: llmOut.Confidence,
			Source:     "llm",
			LLMResult:  &llmOut,
			Details: map[string]any{
				"fallback_used": false,
				"reasoning":     llmOut.Reasoning,
			},
			Explanation: buildExplanation(llmOut.Decision, "llm", PolicyLLMFallback, nil, &llmOut),
			Evidence:    extractEvidence(req.Input, nil, &llmOut),
		}
	}

	e.logger.Info("inference failed or uncertain, falling back to rules", "error", llmOut.Err)
	ruleOut := e.rule.Evaluate(ctx, req.TenantID, req.RulesetID, req.Input)

	if ruleOut.Success {
		decision := evaluator.ExtractDecision(ruleOut.Raw)
		return &JudgmentResult{
			Decision:   decision,
			Confidence: evaluator.RuleConfidence(ruleOut),
			Source:     "rule_fallback",
			RuleResult: &ruleOut,
			LLMResult:  &llmOut,
			Details: map[string]any{
				"fallback_used": true,
				"llm_error":     llmOut.Err,
			},
			Explanation: buildExplanation(decision, "rule_fallback", PolicyLLMFallback, &ruleOut, &llmOut),
			Evidence:    extractEvidence(req.Input, &ruleOut, &llmOut),
		}
	}

	return &JudgmentResult{
		Decision:   evaluator.DecisionUnknown,
		Confidence: 0.0,
		Source:     "none",
		RuleResult: &ruleOut,
		LLMResult:  &llmOut,
		Details: map[string]any{
			"fallback_used": true,
			"llm_error":     llmOut.Err,
			"rule_error":    ruleOut.Err,
			"both_failed":   true,
		},
		Explanation: buildExplanation(evaluator.DecisionUnknown, "none", PolicyLLMFallback, &ruleOut, &llmOut),
		Evidence:    extractEvidence(req.Input, &ruleOut, &llmOut),
	}
}

// escalate uses the rule result when it is confident and hands the final
// decision to inference when it is not. The threshold comparison is
// inclusive: a rule confidence of exactly RuleConfidenceThreshold stays
// with the rule result.
func (e *Engine) escalate(ctx context.Context, req Request) *JudgmentResult {
	ruleOut := e.rule.Evaluate(ctx, req.TenantID, req.RulesetID, req.Input)
	ruleConfidence := evaluator.RuleConfidence(ruleOut)

	if ruleOut.Success && ruleConfidence >= RuleConfidenceThreshold {
		decision := evaluator.ExtractDecision(ruleOut.Raw)
		return &JudgmentResult{
			Decision:    decision,
			Confidence:  ruleConfidence,
			Source:      "rule",
			RuleResult:  &ruleOut,
			Details:     map[string]any{"escalated": false},
			Explanation: buildExplanation(decision, "rule", PolicyEscalate, &ruleOut, nil),
			Evidence:    extractEvidence(req.Input, &ruleOut, nil),
		}
	}

	e.logger.Info("escalating to inference", "rule_confidence", ruleConfidence)
	llmOut := e.llm.Evaluate(ctx, req.Input, req.Context)

	return &JudgmentResult{
		Decision:   llmOut.Decision,
		Confidence: llmOut.Confidence,
		Source:     "llm_escalated",
		RuleResult: &ruleOut,
		LLMResult:  &llmOut,
		Details: map[string]any{
			"escalated":       true,
			"rule_confidence": ruleConfidence,
			"reasoning":       llmOut.Reasoning,
		},
		Explanation: buildExplanation(llmOut.Decision, "llm_escalated", PolicyEscalate, &ruleOut, &llmOut),
		Evidence:    extractEvidence(req.Input, &ruleOut, &llmOut),
	}
}

// hybridGate short-circuits on a confident rule result and otherwise
// consults inference and compares. Agreement earns a consensus bonus on
// the averaged confidence; disagreement picks the more confident side and
// discounts it.
func (e *Engine) hybridGate(ctx context.Context, req Request) *JudgmentResult {
	ruleOut := e.rule.Evaluate(ctx, req.TenantID, req.RulesetID, req.Input)
	ruleConfidence := evaluator.RuleConfidence(ruleOut)
	ruleDecision := evaluator.ExtractDecision(ruleOut.Raw)

	if ruleOut.Success && ruleConfidence >= GateThreshold {
		return &JudgmentResult{
			Decision:   ruleDecision,
			Confidence: ruleConfidence,
			Source:     "rule",
			RuleResult: &ruleOut,
			Details: map[string]any{
				"gate_passed":     true,
				"rule_confidence": ruleConfidence,
				"gate_threshold":  GateThreshold,
			},
			Explanation: buildExplanation(ruleDecision, "rule", PolicyHybridGate, &ruleOut, nil),
			Evidence:    extractEvidence(req.Input, &ruleOut, nil),
		}
	}

	e.logger.Info("gate not passed, consulting inference", "rule_confidence", ruleConfidence)
	llmOut := e.llm.Evaluate(ctx, req.Input, req.Context)

	if ruleDecision == llmOut.Decision && ruleDecision != evaluator.DecisionUnknown {
		combined := math.Min((ruleConfidence+llmOut.Confidence)/2*ConsensusBonusGate, 1.0)
		return &JudgmentResult{
			Decision:   ruleDecision,
			Confidence: round3(combined),
			Source:     "hybrid_consensus",
			RuleResult: &ruleOut,
			LLMResult:  &llmOut,
			Details: map[string]any{
				"gate_passed":     false,
				"consensus":       true,
				"rule_confidence": ruleConfidence,
				"llm_confidence":  llmOut.Confidence,
				"gate_threshold":  GateThreshold,
			},
			Explanation: buildExplanation(ruleDecision, "hybrid_consensus", PolicyHybridGate, &ruleOut, &llmOut),
			Evidence:    extractEvidence(req.Input, &ruleOut, &llmOut),
		}
	}

	finalDecision := ruleDecision
	primarySource := "rule"
	finalConfidence := ruleConfidence
	if llmOut.Confidence > ruleConfidence {
		finalDecision = llmOut.Decision
		primarySource = "llm"
		finalConfidence = llmOut.Confidence
	}
	finalConfidence *= DisagreementPenalty

	return &JudgmentResult{
		Decision:   finalDecision,
		Confidence: round3(finalConfidence),
		Source:     "hybrid_" + primarySource,
		RuleResult: &ruleOut,
		LLMResult:  &llmOut,
		Details: map[string]any{
			"gate_passed":                  false,
			"consensus":                    false,
			"rule_decision":                ruleDecision,
			"llm_decision":                 llmOut.Decision,
			"rule_confidence":              ruleConfidence,
			"llm_confidence":               llmOut.Confidence,
			"primary_source":               primarySource,
			"disagreement_penalty_applied": true,
			"gate_threshold":               GateThreshold,
		},
		Explanation: buildExplanation(finalDecision, "hybrid_"+primarySource, PolicyHybridGate, &ruleOut, &llmOut),
		Evidence:    extractEvidence(req.Input, &ruleOut, &llmOut),
	}
}

// hybridWeighted runs both evaluators concurrently and blends their
// confidences by weight. The decision comes from the more confident side;
// agreement earns a consensus bonus on the blended confidence.
func (e *Engine) hybridWeighted(ctx context.Context, req Request) *JudgmentResult {
	var (
		ruleOut evaluator.RuleOutcome
		llmOut  evaluator.LLMOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ruleOut = e.rule.Evaluate(gctx, req.TenantID, req.RulesetID, req.Input)
		return nil
	})
	g.Go(func() error {
		llmOut = e.llm.Evaluate(gctx, req.Input, req.Context)
		return nil
	})
	// Adapters absorb their own failures, so Wait only synchronizes.
	g.Wait()

	ruleConfidence := evaluator.RuleConfidence(ruleOut)
	ruleDecision := evaluator.ExtractDecision(ruleOut.Raw)

	combined := ruleConfidence*e.ruleWeight + llmOut.Confidence*e.llmWeight

	finalDecision := ruleDecision
	primarySource := "rule"
	if llmOut.Confidence > ruleConfidence {
		finalDecision = llmOut.Decision
		primarySource = "llm"
	}

	if ruleDecision == llmOut.Decision && ruleDecision != evaluator.DecisionUnknown {
		combined = math.Min(combined*ConsensusBonusWeighted, 1.0)
	}

	return &JudgmentResult{
		Decision:   finalDecision,
		Confidence: round3(combined),
		Source:     "hybrid",
		RuleResult: &ruleOut,
		LLMResult:  &llmOut,
		Details: map[string]any{
			"rule_confidence": ruleConfidence,
			"llm_confidence":  llmOut.Confidence,
			"rule_decision":   ruleDecision,
			"llm_decision":    llmOut.Decision,
			"primary_source":  primarySource,
			"weights":         map[string]any{"rule": e.ruleWeight, "llm": e.llmWeight},
		},
		Explanation: buildExplanation(finalDecision, "hybrid", PolicyHybridWeighted, &ruleOut, &llmOut),
		Evidence:    extractEvidence(req.Input, &ruleOut, &llmOut),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
