package factory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
	storemongo "github.com/omarmfouad25/travel-agency-dashboard/internal/store/mongo"
	storespanner "github.com/omarmfouad25/travel-agency-dashboard/internal/store/spanner"
	storesqlite "github.com/omarmfouad25/travel-agency-dashboard/internal/store/sqlite"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store/sqlstore"
)

// NewStore returns the store.Store selected by cfg.DBDriver.
// Connections are opened synchronously since health checks need them immediately;
// schema work that can wait runs as an async bootstrap.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second

	switch cfg.DBDriver {
	case "mongo":
		openCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()
		return storemongo.Open(openCtx, cfg.MongoURI, storemongo.Options{
			Database:       cfg.MongoDatabase,
			TripCollection: cfg.TripCollection,
			UserCollection: cfg.UserCollection,
		})

	case "postgres", "mysql":
		dsn := cfg.PostgresDSN
		if cfg.DBDriver == "mysql" {
			dsn = cfg.MySQLDSN
		}
		if dsn == "" {
			return nil, fmt.Errorf("TRIP_SERVICE_%s_DSN is required when DB_DRIVER=%s", strings.ToUpper(cfg.DBDriver), cfg.DBDriver)
		}
		dialect := sqlstore.Postgres
		if cfg.DBDriver == "mysql" {
			dialect = sqlstore.MySQL
		}
		db, err := sqlstore.Open(ctx, dialect, dsn)
		if err != nil {
			return nil, err
		}
		return sqlstore.NewWithDB(db), nil

	case "sqlite":
		db, err := storesqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return storesqlite.New(db), nil

	case "spanner":
		var opts []option.ClientOption
		if cfg.SpannerEndpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.SpannerEndpoint))
		}
		client, err := storespanner.Open(ctx, cfg.SpannerDatabase, cfg.SpannerEndpoint)
		if err != nil {
			return nil, err
		}

		// Async schema bootstrap with configurable timeout; don't block startup
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
			defer cancel()
			if err := storespanner.EnsureSchema(bootstrapCtx, client, opts...); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap completed")
			}
		}()
		return storespanner.New(client), nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
}
