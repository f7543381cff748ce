package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang-news-insight/pkg/apperror"
	pkgconfig "golang-news-insight/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: pkgconfig.Database{Host: "db", User: "svc", Password: "secret", DBName: "insight"},
		Scraper:  Scraper{Provider: "dataset", Token: "tok", DatasetID: "ds"},
		AI:       AI{Provider: "openai", APIKey: "key", BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		Ingest:   Ingest{DefaultLimit: 50, MaxLimit: 1000},
		Analysis: Analysis{BatchSize: 20, MaxAttempts: 3},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_NamesMissingVariable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		key    string
	}{
		{"database host", func(c *Config) { c.Database.Host = "" }, "DATABASE_HOST"},
		{"database password", func(c *Config) { c.Database.Password = " " }, "DATABASE_PASSWORD"},
		{"scraper token", func(c *Config) { c.Scraper.Token = "" }, "SCRAPER_TOKEN"},
		{"dataset id", func(c *Config) { c.Scraper.DatasetID = "" }, "SCRAPER_DATASET_ID"},
		{"feed urls", func(c *Config) { c.Scraper.Provider = "rss" }, "SCRAPER_FEED_URLS"},
		{"ai key", func(c *Config) { c.AI.APIKey = "" }, "AI_API_KEY"},
		{"ai base url", func(c *Config) { c.AI.BaseURL = "" }, "AI_BASE_URL"},
		{"ai model", func(c *Config) { c.AI.Model = "" }, "AI_MODEL"},
		{"provider", func(c *Config) { c.AI.Provider = "other" }, "AI_PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *apperror.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
database:
  host: localhost
  user: svc
  password: secret
  name: insight
scraper:
  token: file-token
  dataset_id: ds-1
ai:
  api_key: file-key
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("AI_MODEL", "gpt-4.1-mini")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "gpt-4.1-mini", cfg.AI.Model)
	assert.Equal(t, 20, cfg.Analysis.BatchSize)
	assert.Equal(t, "120ms", cfg.Analysis.Pacing.String())
}

func TestLoadDatabase_IgnoresPipelineSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
database:
  host: localhost
  user: svc
  password: secret
  name: insight
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadDatabase(path)
	require.NoError(t, err)
	assert.Equal(t, "insight", cfg.Database.DBName)

	_, err = Load(path)
	var cfgErr *apperror.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "SCRAPER_TOKEN", cfgErr.Key)
}
