package evaluator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// jsonObjectRE locates the first brace-delimited object in a model
// response. Models frequently wrap the object in prose or code fences.
var jsonObjectRE = regexp.MustCompile(`(?s)\{[^{}]*\}`)

// ParsedDecision is a successfully parsed inference response.
type ParsedDecision struct {
	Decision   Decision
	Confidence float64
	Reasoning  string
}

// ParseError reports an inference response that could not be interpreted.
// It keeps the raw text for diagnostics.
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable inference response: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ParseDecision extracts a decision object from raw model output. Parsing
// is strict: exactly one of the return values is non-nil, and the caller
// decides how a parse failure degrades.
func ParseDecision(text string) (*ParsedDecision, *ParseError) {
	match := jsonObjectRE.FindString(text)
	if match == "" {
		return nil, &ParseError{Raw: text, Cause: fmt.Errorf("no JSON object found")}
	}

	var body struct {
		Decision   string   `json:"decision"`
		Confidence *float64 `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(match), &body); err != nil {
		return nil, &ParseError{Raw: text, Cause: err}
	}
	value := strings.TrimSpace(body.Decision)
	if value == "" {
		return nil, &ParseError{Raw: text, Cause: fmt.Errorf("missing decision field")}
	}

	decision := NormalizeDecision(value)
	if decision == DecisionUnknown {
		// An UNKNOWN decision never carries real confidence: a value outside
		// the vocabulary is an unusable response, and a model declaring
		// UNKNOWN itself has no confidence to report.
		if !strings.EqualFold(value, "UNKNOWN") {
			return nil, &ParseError{Raw: text, Cause: fmt.Errorf("unrecognized decision %q", body.Decision)}
		}
		return &ParsedDecision{Decision: DecisionUnknown, Confidence: 0, Reasoning: body.Reasoning}, nil
	}

	// A decision without a confidence is a usable but hesitant answer.
	confidence := 0.5
	if body.Confidence != nil {
		confidence = clamp01(*body.Confidence)
	}
	return &ParsedDecision{
		Decision:   decision,
		Confidence: confidence,
		Reasoning:  body.Reasoning,
	}, nil
}
