package factory

import (
	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/images"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/images/unsplash"
)

// NewImageSearcher returns the Unsplash client, or a searcher that always finds
// nothing when no access key is configured. Trips are still created without images.
func NewImageSearcher(cfg *config.Config, log zerolog.Logger) images.Searcher {
	if cfg.ImagesAPIKey == "" {
		log.Warn().Msg("IMAGES_API_KEY not set; trips will be created without images")
		return images.Noop{}
	}
	return unsplash.New(cfg.ImagesBaseURL, cfg.ImagesAPIKey, cfg.ImagesTimeout(), cfg.ImagesCacheTTL(), log)
}
