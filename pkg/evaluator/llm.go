package evaluator

import (
	"context"
	"log/slog"

	"mercator-hq/saturn/pkg/breaker"
	"mercator-hq/saturn/pkg/inference"
)

// LLMAdapter evaluates a reading through the inference service. Every call
// goes through the circuit breaker; transport failures, breaker rejections
// and unparseable responses all degrade into the outcome rather than
// surfacing as errors.
type LLMAdapter struct {
	client  inference.Client
	breaker *breaker.Breaker
	logger  *slog.Logger
}

func NewLLMAdapter(client inference.Client, br *breaker.Breaker) *LLMAdapter {
	return &LLMAdapter{
		client:  client,
		breaker: br,
		logger:  slog.Default().With("component", "llm-adapter"),
	}
}

// Evaluate asks the model to judge input. extra carries optional operator
// context included in the prompt.
//
// Degradation ladder: a transport or breaker failure yields UNKNOWN with
// confidence 0.0; a response that arrives but cannot be parsed yields
// UNKNOWN with confidence 0.3, since a live model is weak evidence that the
// reading is at least not trivially classifiable.
func (a *LLMAdapter) Evaluate(ctx context.Context, input, extra map[string]any) LLMOutcome {
	user := buildUserPrompt(input, extra)

	result, err := a.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
		return a.client.Generate(ctx, systemPrompt, user)
	})
	if err != nil {
		a.logger.Warn("inference call failed", "error", err)
		return LLMOutcome{
			Decision:   DecisionUnknown,
			Confidence: 0.0,
			Err:        err.Error(),
		}
	}

	text, _ := result.(string)
	parsed, perr := ParseDecision(text)
	if perr != nil {
		a.logger.Warn("inference response unparseable", "error", perr)
		return LLMOutcome{
			Decision:    DecisionUnknown,
			Confidence:  0.3,
			RawResponse: text,
			Err:         perr.Error(),
		}
	}

	return LLMOutcome{
		Success:     true,
		Decision:    parsed.Decision,
		Confidence:  parsed.Confidence,
		Reasoning:   parsed.Reasoning,
		Model:       a.client.Model(),
		RawResponse: text,
	}
}
