// Package gemini generates itineraries with the Gemini generateContent REST API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

type Provider struct {
	client *resty.Client
	model  string
}

// New creates a Gemini provider. An empty baseURL uses the public endpoint;
// a zero timeout leaves the call bounded only by the request context.
func New(baseURL, apiKey, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", apiKey)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Provider{client: c, model: model}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt as a single user turn and returns the first
// candidate's text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}

	var out generateResponse
	var apiErr apiError
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("model", p.model).
		SetBody(&body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini status %d", resp.StatusCode())
	}

	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked prompt: %s", out.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini returned no candidates")
	}
	c := out.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return "", fmt.Errorf("gemini candidate has no content (finishReason=%s)", out.Candidates[0].FinishReason)
	}
	var sb strings.Builder
	for _, pt := range c.Parts {
		sb.WriteString(pt.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return sb.String(), nil
}

// HealthPing implements health.HealthPinger by fetching the model metadata,
// which verifies both reachability and the API key without spending quota.
func (p *Provider) HealthPing(ctx context.Context) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("model", p.model).
		Get("/v1beta/models/{model}")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("gemini status %d", resp.StatusCode())
	}
	return nil
}
