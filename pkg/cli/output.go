package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText renders a key/value listing for humans.
	FormatText OutputFormat = "text"
	// FormatJSON renders indented JSON for scripting.
	FormatJSON OutputFormat = "json"
)

// Formatter renders a command result to a writer.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats fall back
// to text.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// JSONFormatter renders indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// TextFormatter renders a flat key/value listing. Structured values are
// round-tripped through JSON so nested fields print compactly.
type TextFormatter struct{}

func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Not an object; print as-is.
		_, err = fmt.Fprintf(w, "%s\n", raw)
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%-18s %s\n", k+":", fields[k]); err != nil {
			return err
		}
	}
	return nil
}
