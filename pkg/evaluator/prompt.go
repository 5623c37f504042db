package evaluator

import (
	"encoding/json"
	"fmt"
)

// systemPrompt pins the model to the response contract ParseDecision
// expects. Keeping the contract in the system prompt rather than the user
// prompt makes it harder for input data to override.
const systemPrompt = `You are an industrial equipment monitoring judge. You receive a sensor
reading and decide its severity.

Respond with a single JSON object and nothing else:
{"decision": "OK" | "WARNING" | "CRITICAL", "confidence": <0.0-1.0>, "reasoning": "<one or two sentences>"}

Decide CRITICAL only when the reading indicates immediate risk to equipment
or safety. Decide WARNING for readings that are abnormal but not immediately
dangerous. Decide OK otherwise. Confidence reflects how certain you are in
the decision, not how severe the reading is.`

// buildUserPrompt renders the reading and optional operator context as the
// user turn. Both documents are embedded as JSON so field names survive
// verbatim.
func buildUserPrompt(input, extra map[string]any) string {
	inputJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		inputJSON = []byte(fmt.Sprintf("%v", input))
	}

	prompt := fmt.Sprintf("Sensor reading:\n%s\n", inputJSON)
	if len(extra) > 0 {
		extraJSON, err := json.MarshalIndent(extra, "", "  ")
		if err != nil {
			extraJSON = []byte(fmt.Sprintf("%v", extra))
		}
		prompt += fmt.Sprintf("\nAdditional context:\n%s\n", extraJSON)
	}
	return prompt
}
