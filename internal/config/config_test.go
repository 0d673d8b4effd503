package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hopper/internal/config"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config file at %s", path)
	}
	if cfg.Server.URL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected default server url %q", cfg.Server.URL)
	}
	if cfg.Conversion.PreviewRows != 100 {
		t.Fatalf("unexpected default preview rows %d", cfg.Conversion.PreviewRows)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hopper.toml")
	body := `
[server]
url = "https://convert.example.com/"

[conversion]
output_format = "XLSX"

[paths]
state_dir = "` + filepath.Join(dir, "state") + `"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Server.URL != "https://convert.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Server.URL)
	}
	if cfg.Conversion.OutputFormat != "xlsx" {
		t.Fatalf("expected lowercased format, got %q", cfg.Conversion.OutputFormat)
	}
	if !filepath.IsAbs(cfg.Paths.DownloadDir) {
		t.Fatalf("expected absolute download dir, got %q", cfg.Paths.DownloadDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		keyword string
	}{
		{"bad url", func(c *config.Config) { c.Server.URL = "not a url" }, "server.url"},
		{"bad scheme", func(c *config.Config) { c.Server.URL = "ftp://host" }, "scheme"},
		{"bad format", func(c *config.Config) { c.Conversion.OutputFormat = "pdf" }, "output_format"},
		{"zero rows", func(c *config.Config) { c.Conversion.PreviewRows = 0 }, "preview_rows"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"zero ttl", func(c *config.Config) { c.Notifications.TTLSeconds = 0 }, "ttl_seconds"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.keyword) {
				t.Fatalf("expected error mentioning %q, got %v", tc.keyword, err)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[server]") {
		t.Fatal("sample config missing [server] section")
	}
}
