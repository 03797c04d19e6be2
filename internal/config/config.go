// Package config loads and validates tickerscout configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Scan     ScanConfig     `mapstructure:"scan"`
	Reddit   RedditConfig   `mapstructure:"reddit"`
	Registry RegistryConfig `mapstructure:"registry"`
	Database DatabaseConfig `mapstructure:"database"`
	Ops      OpsConfig      `mapstructure:"ops"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ScanConfig sets the traversal widths and concurrency for one run.
type ScanConfig struct {
	Subreddit          string `mapstructure:"subreddit"`
	Posts              int    `mapstructure:"posts"`
	CommentsPerPost    int    `mapstructure:"comments_per_post"`
	RepliesPerComment  int    `mapstructure:"replies_per_comment"`
	Concurrency        int    `mapstructure:"concurrency"`
	MaxPersistFailures int    `mapstructure:"max_persist_failures"`
}

// RedditConfig governs the Reddit API client.
type RedditConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	UserAgent       string  `mapstructure:"user_agent"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	CooldownSeconds int     `mapstructure:"cooldown_seconds"`
	MaxRetries      int     `mapstructure:"max_retries"`
	QPS             float64 `mapstructure:"qps"`
	Burst           int     `mapstructure:"burst"`
}

// RegistryConfig governs the SEC ticker-registry loader.
type RegistryConfig struct {
	URL            string `mapstructure:"url"`
	ContactEmail   string `mapstructure:"contact_email"`
	CachePath      string `mapstructure:"cache_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DatabaseConfig controls the persistence sink.
type DatabaseConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
	// Dedupe makes mention inserts idempotent across re-runs via
	// ON CONFLICT DO NOTHING on (submission_id, ticker).
	Dedupe bool `mapstructure:"dedupe"`
}

// OpsConfig controls the optional health/metrics HTTP surface.
type OpsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features and the rolling file sink.
type LoggingConfig struct {
	Development bool          `mapstructure:"development"`
	Level       string        `mapstructure:"level"`
	File        LogFileConfig `mapstructure:"file"`
}

// LogFileConfig configures log rotation; an empty Path disables the file sink.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TICKERSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.posts", 15)
	v.SetDefault("scan.comments_per_post", 5)
	v.SetDefault("scan.replies_per_comment", 5)
	v.SetDefault("scan.concurrency", 15)
	v.SetDefault("scan.max_persist_failures", 5)
	v.SetDefault("reddit.base_url", "https://www.reddit.com")
	v.SetDefault("reddit.user_agent", "tickerscout/1.0")
	v.SetDefault("reddit.timeout_seconds", 15)
	v.SetDefault("reddit.cooldown_seconds", 60)
	v.SetDefault("reddit.max_retries", 1)
	v.SetDefault("reddit.qps", 0)
	v.SetDefault("reddit.burst", 1)
	v.SetDefault("registry.url", "https://www.sec.gov/files/company_tickers.json")
	v.SetDefault("registry.cache_path", "tickers_cache.json")
	v.SetDefault("registry.timeout_seconds", 30)
	v.SetDefault("database.provider", "memory")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.dedupe", true)
	v.SetDefault("ops.enabled", false)
	v.SetDefault("ops.addr", ":8080")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file.max_size_mb", 50)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age_days", 14)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scan.Posts <= 0 {
		return fmt.Errorf("scan.posts must be > 0")
	}
	if c.Scan.CommentsPerPost <= 0 {
		return fmt.Errorf("scan.comments_per_post must be > 0")
	}
	if c.Scan.RepliesPerComment <= 0 {
		return fmt.Errorf("scan.replies_per_comment must be > 0")
	}
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be > 0")
	}
	if c.Reddit.TimeoutSeconds <= 0 {
		return fmt.Errorf("reddit.timeout_seconds must be > 0")
	}
	if c.Reddit.CooldownSeconds <= 0 {
		return fmt.Errorf("reddit.cooldown_seconds must be > 0")
	}
	switch c.Database.Provider {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn must be set when provider is postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database.provider %q", c.Database.Provider)
	}
	if c.Ops.Enabled && c.Ops.Addr == "" {
		return fmt.Errorf("ops.addr must be set when ops is enabled")
	}
	return nil
}

// RedditTimeout returns the Reddit client timeout as a duration.
func (c Config) RedditTimeout() time.Duration {
	return time.Duration(c.Reddit.TimeoutSeconds) * time.Second
}

// RedditCooldown returns the rate-limit cooldown as a duration.
func (c Config) RedditCooldown() time.Duration {
	return time.Duration(c.Reddit.CooldownSeconds) * time.Second
}

// RegistryTimeout returns the SEC loader timeout as a duration.
func (c Config) RegistryTimeout() time.Duration {
	return time.Duration(c.Registry.TimeoutSeconds) * time.Second
}
