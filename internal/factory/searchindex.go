package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/searchindex"
)

// NewSearchIndex creates the Weaviate trip index, or nil when SEARCH_INDEX_URL is empty.
// Launches async bootstrap with short timeout; returns index immediately for fast startup.
func NewSearchIndex(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*searchindex.Weaviate, error) {
	if cfg.SearchIndexURL == "" {
		log.Info().Msg("search index disabled")
		return nil, nil
	}

	idx, err := searchindex.NewWeaviateIndex(cfg.SearchIndexURL)
	if err != nil {
		return nil, err
	}

	// Async bootstrap with configurable timeout; don't block startup
	go func() {
		bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()

		if err := idx.Bootstrap(bootstrapCtx); err != nil {
			log.Warn().Err(err).Str("url", cfg.SearchIndexURL).Msg("search index bootstrap failed")
		} else {
			log.Debug().Str("url", cfg.SearchIndexURL).Msg("search index bootstrap completed")
		}
	}()

	return idx, nil
}
