package config

import (
	"strings"
	"time"

	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/config"
)

// Scraper holds the item source configuration.
type Scraper struct {
	// Provider is "dataset" (scraping provider dataset API) or "rss".
	Provider  string        `mapstructure:"provider"`
	BaseURL   string        `mapstructure:"base_url"`
	Token     string        `mapstructure:"token"`
	DatasetID string        `mapstructure:"dataset_id"`
	FeedURLs  []string      `mapstructure:"feed_urls"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AI holds the analyzer configuration. BaseURL may point at any
// OpenAI-compatible provider.
type AI struct {
	Provider            string        `mapstructure:"provider"`
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	Model               string        `mapstructure:"model"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Ingest holds ingest limits.
type Ingest struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// Analysis holds batch runner tuning.
type Analysis struct {
	BatchSize    int           `mapstructure:"batch_size"`
	MaxBatchSize int           `mapstructure:"max_batch_size"`
	Pacing       time.Duration `mapstructure:"pacing"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BaseBackoff  time.Duration `mapstructure:"base_backoff"`
	MaxJitter    time.Duration `mapstructure:"max_jitter"`
}

// Dashboard holds dashboard read settings.
type Dashboard struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Schedule holds cron expressions for the worker. Empty disables a job.
type Schedule struct {
	IngestCron   string `mapstructure:"ingest_cron"`
	AnalysisCron string `mapstructure:"analysis_cron"`
}

// Telegram holds configuration for the Telegram notifier. An empty token disables it.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration shared by the API and the worker.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Scraper   Scraper         `mapstructure:"scraper"`
	AI        AI              `mapstructure:"ai"`
	Ingest    Ingest          `mapstructure:"ingest"`
	Analysis  Analysis        `mapstructure:"analysis"`
	Dashboard Dashboard       `mapstructure:"dashboard"`
	Schedule  Schedule        `mapstructure:"schedule"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Defaults lists every known key so that each one can be set from the environment.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                   "news-insight",
		"app.env":                    "development",
		"app.version":                "dev",
		"logger.level":               "info",
		"logger.encoding":            "json",
		"database.host":              "",
		"database.port":              5432,
		"database.user":              "",
		"database.password":          "",
		"database.name":              "",
		"database.ssl_mode":          "disable",
		"database.time_zone":         "UTC",
		"database.max_idle_conns":    5,
		"database.max_open_conns":    10,
		"database.conn_max_lifetime": "30m",
		"database.log_level":         "warn",
		"redis.host":                 "",
		"redis.port":                 6379,
		"redis.password":             "",
		"redis.db":                   0,
		"redis.pool_size":            10,
		"api.host":                   "0.0.0.0",
		"api.port":                   8080,
		"scraper.provider":           "dataset",
		"scraper.base_url":           "https://api.apify.com",
		"scraper.token":              "",
		"scraper.dataset_id":         "",
		"scraper.feed_urls":          []string{},
		"scraper.timeout":            "90s",
		"ai.provider":                "openai",
		"ai.api_key":                 "",
		"ai.base_url":                "https://api.openai.com/v1",
		"ai.model":                   "gpt-4o-mini",
		"ai.max_request_per_minute":  0,
		"ai.timeout":                 "90s",
		"ingest.default_limit":       50,
		"ingest.max_limit":           1000,
		"analysis.batch_size":        20,
		"analysis.max_batch_size":    100,
		"analysis.pacing":            "120ms",
		"analysis.lock_ttl":          "10m",
		"analysis.max_attempts":      3,
		"analysis.base_backoff":      "300ms",
		"analysis.max_jitter":        "200ms",
		"dashboard.cache_ttl":        "15s",
		"schedule.ingest_cron":       "",
		"schedule.analysis_cron":     "",
		"telegram.bot_token":         "",
		"telegram.chat_id":           0,
	}
}

// Load loads the configuration from the given path and validates it.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type setting struct{ key, value string }

// Validate checks that every required setting is present. The returned
// ConfigError names the environment variable to set.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	var required []setting

	switch c.Scraper.Provider {
	case "dataset":
		required = append(required,
			setting{"scraper.token", c.Scraper.Token},
			setting{"scraper.dataset_id", c.Scraper.DatasetID},
		)
	case "rss":
		required = append(required, setting{"scraper.feed_urls", strings.Join(c.Scraper.FeedURLs, ",")})
	default:
		return &apperror.ConfigError{Key: config.EnvName("scraper.provider"), Reason: "must be dataset or rss"}
	}

	switch c.AI.Provider {
	case "openai", "gemini":
	default:
		return &apperror.ConfigError{Key: config.EnvName("ai.provider"), Reason: "must be openai or gemini"}
	}
	required = append(required,
		setting{"ai.api_key", c.AI.APIKey},
		setting{"ai.base_url", c.AI.BaseURL},
		setting{"ai.model", c.AI.Model},
	)

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &apperror.ConfigError{Key: config.EnvName(r.key)}
		}
	}

	if c.Analysis.BatchSize <= 0 {
		return &apperror.ConfigError{Key: config.EnvName("analysis.batch_size"), Reason: "must be positive"}
	}
	if c.Analysis.MaxAttempts <= 0 {
		return &apperror.ConfigError{Key: config.EnvName("analysis.max_attempts"), Reason: "must be positive"}
	}
	if c.Ingest.DefaultLimit <= 0 {
		return &apperror.ConfigError{Key: config.EnvName("ingest.default_limit"), Reason: "must be positive"}
	}
	return nil
}

// ValidateDatabase checks the storage settings only.
func (c *Config) ValidateDatabase() error {
	for _, r := range []setting{
		{"database.host", c.Database.Host},
		{"database.user", c.Database.User},
		{"database.password", c.Database.Password},
		{"database.name", c.Database.DBName},
	} {
		if strings.TrimSpace(r.value) == "" {
			return &apperror.ConfigError{Key: config.EnvName(r.key)}
		}
	}
	return nil
}

// LoadDatabase loads the configuration but validates only the storage
// settings, for tools such as migrations.
func LoadDatabase(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}
