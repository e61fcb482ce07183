package config

import (
	"testing"
)

func TestConfigLoad_Defaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "mongo" || cfg.TextGenProvider != "gemini" || cfg.TextGenModel != "gemini-2.0-flash" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AuthMode != "none" || cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TextGenTimeout().Seconds() != 60 {
		t.Fatalf("unexpected generation timeout: %v", cfg.TextGenTimeout())
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRIP_SERVICE_DB_DRIVER", "Postgres")
	t.Setenv("TRIP_SERVICE_TEXTGEN_PROVIDER", "openai")
	t.Setenv("TRIP_SERVICE_HTTP_PORT", "9191")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("db driver override failed, got %s", cfg.DBDriver)
	}
	if cfg.TextGenModel != "gpt-4o-mini" {
		t.Fatalf("expected provider default model, got %s", cfg.TextGenModel)
	}
	if cfg.GetHTTPAddr() != ":9191" {
		t.Fatalf("unexpected addr %s", cfg.GetHTTPAddr())
	}
}

func TestConfigLoad_ExplicitModelKept(t *testing.T) {
	t.Setenv("TRIP_SERVICE_TEXTGEN_MODEL", "gemini-1.5-pro")
	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.TextGenModel != "gemini-1.5-pro" {
		t.Fatalf("model override lost, got %s", cfg.TextGenModel)
	}
}

func TestResolveDefaults_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "redis" }},
		{"unknown provider", func(c *Config) { c.TextGenProvider = "bard" }},
		{"unknown auth mode", func(c *Config) { c.AuthMode = "oauth" }},
		{"jwt without secret", func(c *Config) { c.AuthMode = "jwt"; c.AuthJWTSecret = "" }},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }},
		{"negative rate", func(c *Config) { c.TextGenRatePerSecond = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewForTesting()
			tt.mutate(cfg)
			if err := cfg.ResolveDefaults(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewForTesting_Resolves(t *testing.T) {
	cfg := NewForTesting()
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("testing config should resolve: %v", err)
	}
	if !cfg.IsTesting() || cfg.IsProduction() {
		t.Fatalf("unexpected environment %s", cfg.Environment)
	}
}
