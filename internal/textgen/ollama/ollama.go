// Package ollama generates itineraries with a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "http://localhost:11434"

// Provider calls the Ollama generate API with streaming disabled.
type Provider struct {
	client *resty.Client
	model  string
}

// New creates a Provider. Hosts without a scheme get http://.
func New(baseURL, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Provider{client: c, model: model}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{Model: p.model, Prompt: prompt, Format: "json"}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil && resp.StatusCode() == http.StatusOK {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if gr.Error != "" {
			return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode(), gr.Error)
		}
		return "", fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	if gr.Error != "" {
		return "", fmt.Errorf("ollama error: %s", gr.Error)
	}
	if strings.TrimSpace(gr.Response) == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}
	return gr.Response, nil
}

// HealthPing implements health.HealthPinger.
// It checks /api/tags for the configured model's presence.
func (p *Provider) HealthPing(ctx context.Context) error {
	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	resp, err := p.client.R().SetContext(ctx).SetResult(&data).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	want := baseModelName(p.model)
	for _, m := range data.Models {
		if baseModelName(m.Name) == want {
			return nil
		}
	}
	return fmt.Errorf("model %s not found", want)
}

// baseModelName drops the tag, so "llama3.1:latest" matches "llama3.1".
func baseModelName(name string) string {
	return strings.Split(name, ":")[0]
}
