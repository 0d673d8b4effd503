// Package testsupport provides shared fixtures for hopper tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"hopper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Logging.Format = "json"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithServerURL points the config at a (usually httptest) backend.
func WithServerURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Server.URL = url
	}
}

// WithOutputFormat overrides the conversion output format.
func WithOutputFormat(format string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conversion.OutputFormat = format
	}
}
