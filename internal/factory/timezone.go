package factory

import (
	"github.com/ringsaturn/tzf"
	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/services"
)

// NewTimeZoneFinder loads the embedded tzf dataset, or returns nil when
// enrichment is disabled or the dataset cannot be loaded.
func NewTimeZoneFinder(cfg *config.Config, log zerolog.Logger) services.TimeZoneFinder {
	if !cfg.EnrichTimeZone {
		return nil
	}
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		log.Warn().Err(err).Msg("time zone finder unavailable; trips will not carry a time zone")
		return nil
	}
	return finder
}
