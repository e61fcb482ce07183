// Package openai generates itineraries with an OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Provider struct {
	client openai.Client
	model  string
}

// New creates a provider. baseURL may point at any OpenAI-compatible server;
// empty keeps the SDK default.
func New(baseURL, apiKey, model string, timeout time.Duration) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &Provider{client: openai.NewClient(opts...), model: model}
}

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("openai returned empty content (finish_reason=%s)", resp.Choices[0].FinishReason)
	}
	return text, nil
}

// HealthPing implements health.HealthPinger by retrieving the configured model.
func (p *Provider) HealthPing(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model); err != nil {
		return fmt.Errorf("openai model %s: %w", p.model, err)
	}
	return nil
}
