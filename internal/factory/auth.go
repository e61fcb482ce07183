package factory

import (
	"fmt"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
)

// NewAuthorizer returns the authorizer selected by cfg.AuthMode.
func NewAuthorizer(cfg *config.Config) (auth.Authorizer, error) {
	switch cfg.AuthMode {
	case "", "none":
		return auth.NewNoopAuthorizer(), nil
	case "static":
		a, err := auth.NewStaticAuthorizer(cfg.AuthStaticTokens)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "jwt":
		if cfg.AuthJWTSecret == "" {
			return nil, fmt.Errorf("TRIP_SERVICE_AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
		return auth.NewJWTAuthorizer(cfg.AuthJWTSecret), nil
	}
	return nil, fmt.Errorf("unknown AUTH_MODE: %s", cfg.AuthMode)
}
