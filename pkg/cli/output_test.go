package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON)

	data := map[string]any{"decision": "CRITICAL", "confidence": 0.92}
	if err := f.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back["decision"] != "CRITICAL" {
		t.Errorf("decision = %v", back["decision"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("output is not indented")
	}
}

func TestTextFormatter_Object(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatText)

	data := map[string]any{"decision": "OK", "confidence": 0.9, "source": "rule"}
	if err := f.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), buf.String())
	}
	// Keys print sorted.
	if !strings.HasPrefix(lines[0], "confidence:") || !strings.HasPrefix(lines[1], "decision:") {
		t.Errorf("unexpected line order: %q", lines)
	}
}

func TestTextFormatter_Scalar(t *testing.T) {
	var buf bytes.Buffer
	f := &TextFormatter{}

	if err := f.FormatTo(&buf, "ok"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != `"ok"` {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewFormatter_UnknownFallsBackToText(t *testing.T) {
	if _, ok := NewFormatter("xml").(*TextFormatter); !ok {
		t.Error("unknown format did not fall back to text")
	}
}
