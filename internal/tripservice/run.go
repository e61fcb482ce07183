package tripservice

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/api"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/events"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/factory"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/health"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/images"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/logger"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/searchindex"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/services"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen"
)

const (
	serviceName     = "trip-service"
	eventBufferSize = 256
)

// deps are the long-lived handles built once at startup and injected everywhere.
type deps struct {
	store  store.Store
	gen    textgen.Generator
	images images.Searcher
	index  searchindex.Index
	pinger health.HealthPinger // index health, nil when search is disabled
	authz  auth.Authorizer
	tz     services.TimeZoneFinder
	bus    *events.Bus
}

// Run starts the trip service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New(serviceName)

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.NewWithWriter(os.Stdout, serviceName, cfg.LogLevel)

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("textgen_provider", cfg.TextGenProvider).
		Str("textgen_model", cfg.TextGenModel).
		Bool("textgen_api_key_set", cfg.TextGenAPIKey != "").
		Bool("images_api_key_set", cfg.ImagesAPIKey != "").
		Str("search_index_url", cfg.SearchIndexURL).
		Str("auth_mode", cfg.AuthMode).
		Msg("Trip service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	d, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(d.store, log)

	if d.index != nil {
		ix := searchindex.NewIndexer(d.index, d.store.Trips(), d.bus, logger.Component(log, "indexer"))
		go ix.Run(ctx)
	}

	svcHealth := startHealthCheckers(ctx, cfg, log, d)
	router := buildRouter(log, d, svcHealth)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Int64("dropped_index_events", d.bus.Dropped()).Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*deps, error) {
	st, err := factory.NewStore(ctx, cfg, logger.Component(log, "store"))
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, err
	}

	gen, err := factory.NewGenerator(ctx, cfg, logger.Component(log, "textgen"))
	if err != nil {
		closeStore(st, log)
		log.Error().Stack().Err(err).Msg("Text generator unavailable")
		return nil, err
	}

	authz, err := factory.NewAuthorizer(cfg)
	if err != nil {
		closeStore(st, log)
		log.Error().Stack().Err(err).Msg("Authorizer unavailable")
		return nil, err
	}

	d := &deps{
		store:  st,
		gen:    gen,
		images: factory.NewImageSearcher(cfg, logger.Component(log, "images")),
		authz:  authz,
		tz:     factory.NewTimeZoneFinder(cfg, log),
		bus:    events.NewBus(eventBufferSize),
	}

	idx, err := factory.NewSearchIndex(ctx, cfg, logger.Component(log, "searchindex"))
	if err != nil {
		closeStore(st, log)
		log.Error().Stack().Err(err).Msg("Search index adapter unavailable")
		return nil, err
	}
	if idx != nil {
		d.index = idx
		d.pinger = idx
	}
	return d, nil
}

// buildRouter wires services into the HTTP API.
func buildRouter(log zerolog.Logger, d *deps, svcHealth api.ServiceHealth) *mux.Router {
	tripSvc := services.NewTripService(services.TripDeps{
		Store:     d.store,
		Generator: d.gen,
		Images:    d.images,
		Index:     d.index,
		Bus:       d.bus,
		TimeZones: d.tz,
	}, logger.Component(log, "trips"))
	userSvc := services.NewUserService(d.store, logger.Component(log, "users"))

	return api.NewRouter(api.RouterDeps{
		Trips:      tripSvc,
		Users:      userSvc,
		Health:     svcHealth,
		Authorizer: d.authz,
	}, logger.Component(log, "http"))
}

// startHealthCheckers starts component checkers and the service-level aggregator.
// Only the store gates service health; the generator and index are reported.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, d *deps) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(d.store, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	genChecker := textgen.NewHealthChecker(d.gen, log, probeTimeout)
	go genChecker.Start(ctx, interval)
	optional := []health.HealthChecker{genChecker}

	if d.pinger != nil {
		idxChecker := searchindex.NewSearchIndexHealthChecker(d.pinger, log, probeTimeout)
		go idxChecker.Start(ctx, interval)
		optional = append(optional, idxChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, storeChecker).WithOptional(optional...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	// Generation can take most of a minute; the write timeout leaves room for it.
	writeTimeout := cfg.TextGenTimeout() + 30*time.Second
	if cfg.TextGenTimeout() == 0 {
		writeTimeout = 0
	}
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth interface{ IsHealthy() bool }) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func closeStore(st store.Store, log zerolog.Logger) {
	if c, ok := st.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
