// Package textgen defines the itinerary text generator and its wrappers.
package textgen

import (
	"context"

	"golang.org/x/time/rate"
)

// Generator sends one prompt to a generative-text service and returns the raw text.
// Implementations make exactly one outbound call and do not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RateLimited gates an underlying Generator behind a token bucket shared by
// all requests in the process. Waiting for a token honours ctx.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// WithRateLimit wraps g so at most perSecond calls start per second.
// A non-positive rate returns g unchanged.
func WithRateLimit(g Generator, perSecond float64) Generator {
	if perSecond <= 0 {
		return g
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: g, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Generate(ctx, prompt)
}

// HealthPing forwards to the wrapped generator when it supports pinging.
func (r *RateLimited) HealthPing(ctx context.Context) error {
	if p, ok := r.next.(interface{ HealthPing(context.Context) error }); ok {
		return p.HealthPing(ctx)
	}
	return nil
}
