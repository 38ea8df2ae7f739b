// Package testsupport provides shared helpers for package tests: configs
// seeded with per-test temp directories and ready-to-use stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"namearchive/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.Bind = "127.0.0.1:0"
	cfg.Gemini.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithGeminiKey sets the generation service API key on the test config.
func WithGeminiKey(key string) ConfigOption {
	return func(c *config.Config) {
		c.Gemini.APIKey = key
	}
}
