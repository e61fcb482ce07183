package factory

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/config"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/images"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/images/unsplash"
	storesqlite "github.com/omarmfouad25/travel-agency-dashboard/internal/store/sqlite"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen/gemini"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen/ollama"
	textgenopenai "github.com/omarmfouad25/travel-agency-dashboard/internal/textgen/openai"
)

func TestNewStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewForTesting()
	st, err := NewStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	s, ok := st.(*storesqlite.Store)
	require.True(t, ok, "expected sqlite store, got %T", st)
	t.Cleanup(func() { _ = s.Close() })

	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""
	_, err = NewStore(ctx, cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "POSTGRES_DSN")

	cfg.DBDriver = "mysql"
	_, err = NewStore(ctx, cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "MYSQL_DSN")

	cfg.DBDriver = "cassandra"
	_, err = NewStore(ctx, cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewGenerator(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewForTesting()
	cfg.BootstrapTimeoutSeconds = 0
	cfg.TextGenBaseURL = "http://127.0.0.1:1"
	cfg.TextGenAPIKey = "k"

	cfg.TextGenProvider = "gemini"
	g, err := NewGenerator(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &gemini.Provider{}, g)

	cfg.TextGenProvider = "openai"
	g, err = NewGenerator(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &textgenopenai.Provider{}, g)

	cfg.TextGenProvider = "ollama"
	cfg.TextGenAPIKey = ""
	g, err = NewGenerator(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &ollama.Provider{}, g)

	cfg.TextGenProvider = "gemini"
	_, err = NewGenerator(ctx, cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "API_KEY")

	cfg.TextGenProvider = "gemini"
	cfg.TextGenAPIKey = "k"
	cfg.TextGenRatePerSecond = 2
	g, err = NewGenerator(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &textgen.RateLimited{}, g)
}

func TestNewImageSearcher(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.ImagesAPIKey = ""
	assert.IsType(t, images.Noop{}, NewImageSearcher(cfg, zerolog.Nop()))

	cfg.ImagesAPIKey = "key"
	assert.IsType(t, &unsplash.Client{}, NewImageSearcher(cfg, zerolog.Nop()))
}

func TestNewSearchIndex_Disabled(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SearchIndexURL = ""
	idx, err := NewSearchIndex(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestNewAuthorizer(t *testing.T) {
	cfg := config.NewForTesting()

	cfg.AuthMode = "none"
	a, err := NewAuthorizer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &auth.NoopAuthorizer{}, a)

	cfg.AuthMode = "static"
	cfg.AuthStaticTokens = "t=u1:admin"
	a, err = NewAuthorizer(cfg)
	require.NoError(t, err)
	id, err := a.Authenticate(context.Background(), "t")
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())

	cfg.AuthStaticTokens = ""
	_, err = NewAuthorizer(cfg)
	assert.Error(t, err)

	cfg.AuthMode = "jwt"
	cfg.AuthJWTSecret = ""
	_, err = NewAuthorizer(cfg)
	assert.Error(t, err)

	cfg.AuthJWTSecret = "secret"
	a, err = NewAuthorizer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &auth.JWTAuthorizer{}, a)
}

func TestNewTimeZoneFinder_Disabled(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.EnrichTimeZone = false
	assert.Nil(t, NewTimeZoneFinder(cfg, zerolog.Nop()))
}
