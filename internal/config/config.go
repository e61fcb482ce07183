package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Prefix is prepended to every environment variable, e.g. TRIP_SERVICE_HTTP_PORT.
const Prefix = "TRIP_SERVICE"

// Config holds the configuration for the trip service.
// Values come from the process environment, optionally seeded from a .env file.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort    int         `envconfig:"HTTP_PORT" default:"8080"`

	// Document store: mongo, postgres, mysql, sqlite, spanner
	DBDriver        string `envconfig:"DB_DRIVER" default:"mongo"`
	MongoURI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"travel_agency"`
	TripCollection  string `envconfig:"TRIP_COLLECTION" default:"trips"`
	UserCollection  string `envconfig:"USER_COLLECTION" default:"users"`
	PostgresDSN     string `envconfig:"POSTGRES_DSN" default:""`
	MySQLDSN        string `envconfig:"MYSQL_DSN" default:""`
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"./data/trips.db"`
	SpannerDatabase string `envconfig:"SPANNER_DATABASE" default:""`
	SpannerEndpoint string `envconfig:"SPANNER_ENDPOINT" default:""`

	// Itinerary generation: gemini, openai, ollama
	TextGenProvider       string  `envconfig:"TEXTGEN_PROVIDER" default:"gemini"`
	TextGenModel          string  `envconfig:"TEXTGEN_MODEL" default:""`
	TextGenAPIKey         string  `envconfig:"TEXTGEN_API_KEY" default:""`
	TextGenBaseURL        string  `envconfig:"TEXTGEN_BASE_URL" default:""`
	TextGenTimeoutSeconds int     `envconfig:"TEXTGEN_TIMEOUT_SECONDS" default:"60"`
	TextGenRatePerSecond  float64 `envconfig:"TEXTGEN_RATE_PER_SECOND" default:"0"`

	// Image enrichment (Unsplash compatible)
	ImagesBaseURL         string `envconfig:"IMAGES_BASE_URL" default:"https://api.unsplash.com"`
	ImagesAPIKey          string `envconfig:"IMAGES_API_KEY" default:""`
	ImagesTimeoutSeconds  int    `envconfig:"IMAGES_TIMEOUT_SECONDS" default:"10"`
	ImagesCacheTTLSeconds int    `envconfig:"IMAGES_CACHE_TTL_SECONDS" default:"0"`

	// Search index (Weaviate host:port); empty disables trip search
	SearchIndexURL string `envconfig:"SEARCH_INDEX_URL" default:""`

	// Auth: none trusts the userId in the request body
	AuthMode         string `envconfig:"AUTH_MODE" default:"none"`
	AuthStaticTokens string `envconfig:"AUTH_STATIC_TOKENS" default:""`
	AuthJWTSecret    string `envconfig:"AUTH_JWT_SECRET" default:""`

	EnrichTimeZone bool `envconfig:"ENRICH_TIMEZONE" default:"true"`

	// Health / bootstrap
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"5"`
}

var defaultModels = map[string]string{
	"gemini": "gemini-2.0-flash",
	"openai": "gpt-4o-mini",
	"ollama": "llama3.1",
}

// ResolveDefaults validates enumerations and fills values derived from them.
func (c *Config) ResolveDefaults() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case "mongo", "postgres", "mysql", "sqlite", "spanner":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	c.TextGenProvider = strings.ToLower(strings.TrimSpace(c.TextGenProvider))
	def, ok := defaultModels[c.TextGenProvider]
	if !ok {
		return fmt.Errorf("unsupported TEXTGEN_PROVIDER: %s", c.TextGenProvider)
	}
	if c.TextGenModel == "" {
		c.TextGenModel = def
	}

	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	switch c.AuthMode {
	case "none", "static":
	case "jwt":
		if c.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE: %s", c.AuthMode)
	}

	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	if c.TextGenTimeoutSeconds < 0 || c.ImagesTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.TextGenRatePerSecond < 0 {
		return fmt.Errorf("TEXTGEN_RATE_PER_SECOND must not be negative")
	}
	return nil
}

// New creates a new Config from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the process take precedence.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("textgen_provider", cfg.TextGenProvider).
		Str("textgen_model", cfg.TextGenModel).
		Bool("textgen_api_key_present", cfg.TextGenAPIKey != "").
		Bool("images_api_key_present", cfg.ImagesAPIKey != "").
		Str("search_index_url", cfg.SearchIndexURL).
		Str("auth_mode", cfg.AuthMode).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		LogLevel:                  "debug",
		HTTPPort:                  8080,
		DBDriver:                  "sqlite",
		TripCollection:            "trips",
		UserCollection:            "users",
		SQLitePath:                ":memory:",
		TextGenProvider:           "gemini",
		TextGenModel:              defaultModels["gemini"],
		TextGenTimeoutSeconds:     5,
		ImagesBaseURL:             "http://localhost:0",
		ImagesTimeoutSeconds:      5,
		AuthMode:                  "none",
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// TextGenTimeout returns the per-call generation timeout; zero means none.
func (c *Config) TextGenTimeout() time.Duration {
	return time.Duration(c.TextGenTimeoutSeconds) * time.Second
}

func (c *Config) ImagesTimeout() time.Duration {
	return time.Duration(c.ImagesTimeoutSeconds) * time.Second
}

func (c *Config) ImagesCacheTTL() time.Duration {
	return time.Duration(c.ImagesCacheTTLSeconds) * time.Second
}
