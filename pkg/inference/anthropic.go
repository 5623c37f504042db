package inference

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	config Config
}

// NewAnthropicClient builds a client from config. The API key is read from
// the configured environment variable so it never appears in config files.
func NewAnthropicClient(cfg Config) (*AnthropicClient, error) {
	cfg.ApplyDefaults()

	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("inference API key not set: %s is empty", cfg.APIKeyEnv)
	}

	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(key)),
		config: cfg,
	}, nil
}

func (c *AnthropicClient) Model() string { return c.config.Model }

func (c *AnthropicClient) Generate(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("empty inference response")
	}
	return strings.TrimSpace(message.Content[0].Text), nil
}
