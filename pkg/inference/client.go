// Package inference abstracts the model provider behind a minimal text
// completion interface so the judgment engine never depends on a vendor SDK
// directly.
package inference

import "context"

// Client produces a model completion for a system prompt and user prompt
// pair. Implementations return the raw response text; parsing belongs to
// the caller.
type Client interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Model() string
}

// Config configures an inference client.
type Config struct {
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// ApplyDefaults fills zero-valued fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = "claude-sonnet-4-5"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
}
