package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/health"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen/gemini"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen/ollama"
	textgenopenai "github.com/omarmfouad25/travel-agency-dashboard/internal/textgen/openai"
)

// NewGenerator creates the itinerary text generator selected by cfg.TextGenProvider,
// rate limited when TEXTGEN_RATE_PER_SECOND is set.
// Launches an async reachability probe; returns the generator immediately.
func NewGenerator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (textgen.Generator, error) {
	var gen textgen.Generator
	switch cfg.TextGenProvider {
	case "gemini":
		if cfg.TextGenAPIKey == "" {
			return nil, fmt.Errorf("TRIP_SERVICE_TEXTGEN_API_KEY is required for gemini")
		}
		gen = gemini.New(cfg.TextGenBaseURL, cfg.TextGenAPIKey, cfg.TextGenModel, cfg.TextGenTimeout())
	case "openai":
		if cfg.TextGenAPIKey == "" {
			return nil, fmt.Errorf("TRIP_SERVICE_TEXTGEN_API_KEY is required for openai")
		}
		gen = textgenopenai.New(cfg.TextGenBaseURL, cfg.TextGenAPIKey, cfg.TextGenModel, cfg.TextGenTimeout())
	case "ollama":
		gen = ollama.New(cfg.TextGenBaseURL, cfg.TextGenModel, cfg.TextGenTimeout())
	default:
		return nil, fmt.Errorf("unknown TEXTGEN_PROVIDER: %s", cfg.TextGenProvider)
	}

	if p, ok := gen.(health.HealthPinger); ok {
		go func() {
			probeTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			if err := p.HealthPing(probeCtx); err != nil {
				log.Warn().Err(err).Str("provider", cfg.TextGenProvider).Str("model", cfg.TextGenModel).
					Msg("text generator warmup failed")
			} else {
				log.Debug().Str("provider", cfg.TextGenProvider).Str("model", cfg.TextGenModel).
					Msg("text generator warmup completed")
			}
		}()
	}

	return textgen.WithRateLimit(gen, cfg.TextGenRatePerSecond), nil
}
