package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent)
	assert.Equal(t, 20*time.Second, cfg.GetTotalTimeout())
	assert.Len(t, cfg.Sources, 3)
	assert.Len(t, cfg.Keywords, 10)
}

func TestLoadConfigMissingOptionalFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
}

func TestLoadConfigMissingRequiredFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GW_TEST_DATA", "/var/lib/grantwatch")

	path := writeFile(t, dir, "config.yaml", `
http:
  total_timeout_ms: 1500
storage:
  dsn: ${GW_TEST_DATA}/seen.sqlite
keywords: ["dotace"]
sources:
  - name: test
    url: https://example.org/news/
    item_selector: ".list a"
`)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.GetTotalTimeout())
	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent, "unset keys keep defaults")
	assert.Equal(t, "/var/lib/grantwatch/seen.sqlite", cfg.Storage.DSN)
	assert.Equal(t, []string{"dotace"}, cfg.Keywords)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "href", cfg.Sources[0].HrefAttr)
}

func TestLoadConfigSourcesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sources.yaml", `
sources:
  - name: one
    url: https://one.example/
    item_selector: "a"
    title_attr: title
`)
	path := writeFile(t, dir, "config.yaml", "sources_file: sources.yaml\n")

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "one", cfg.Sources[0].Name)
	assert.Equal(t, "title", cfg.Sources[0].TitleAttr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no user agent", func(c *Config) { c.HTTP.UserAgent = "" }},
		{"zero timeout", func(c *Config) { c.HTTP.TotalTimeoutMS = 0 }},
		{"bad driver", func(c *Config) { c.Storage.Driver = "bolt" }},
		{"no dsn", func(c *Config) { c.Storage.DSN = "" }},
		{"no snapshot", func(c *Config) { c.Snapshot.Path = "" }},
		{"zero concurrency", func(c *Config) { c.Poll.Concurrency = 0 }},
		{"bad log level", func(c *Config) { c.Observability.LogLevel = "trace" }},
		{"no keywords", func(c *Config) { c.Keywords = nil }},
		{"no sources", func(c *Config) { c.Sources = nil }},
		{"relative source url", func(c *Config) { c.Sources[0].URL = "/aktuality" }},
		{"mailto source url", func(c *Config) { c.Sources[0].URL = "mailto:a@b.cz" }},
		{"empty selector", func(c *Config) { c.Sources[0].ItemSelector = "" }},
		{"broken selector", func(c *Config) { c.Sources[0].ItemSelector = "a[" }},
		{"duplicate name", func(c *Config) { c.Sources[1].Name = c.Sources[0].Name }},
		{"render without rod", func(c *Config) { c.Sources[0].Render = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
