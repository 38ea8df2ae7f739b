package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
data_dir = "` + dir + `/data"
bind = "127.0.0.1:9000"

[ratelimit]
window_seconds = 10
max_requests = 5

[gemini]
api_key = "test-key"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.Bind != "127.0.0.1:9000" {
		t.Fatalf("unexpected bind %q", cfg.Paths.Bind)
	}
	if cfg.RateLimit.WindowSeconds != 10 || cfg.RateLimit.MaxRequests != 5 {
		t.Fatalf("rate limit overrides not applied: %+v", cfg.RateLimit)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Fatalf("unexpected api key %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model == "" {
		t.Fatal("defaults should fill unset gemini fields")
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "namearchive.sqlite") {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.RateLimit.WindowSeconds = 0 }},
		{"zero ceiling", func(c *Config) { c.RateLimit.MaxRequests = 0 }},
		{"empty bind", func(c *Config) { c.Paths.Bind = "" }},
		{"empty model", func(c *Config) { c.Gemini.Model = "" }},
		{"zero timeout", func(c *Config) { c.Gemini.TimeoutSeconds = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGeminiAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Fatalf("expected env fallback, got %q", cfg.Gemini.APIKey)
	}
}
