// Package config provides application configuration loaded through Viper.
// Values come from command-line flags, environment variables (HNWATCH_*),
// an optional config file, and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultBaseURL                = "https://news.ycombinator.com/"
	DefaultPollInterval           = 5 * time.Minute
	DefaultTopStoryCount          = 30
	DefaultMaxConcurrentDownloads = 20
	DefaultDownloadTimeout        = 60 * time.Second
	DefaultOutputDir              = "./download"
	DefaultUserAgent              = "hnwatch/" + Version
)

// Version is the application version reported by the CLI and user agent.
const Version = "0.2.0"

// AppConfig holds application-level settings.
type AppConfig struct {
	// Environment is the application environment (development, production).
	Environment string `yaml:"environment"`
	// Debug indicates whether debug mode is enabled.
	Debug bool `yaml:"debug"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	// Level is the minimum logging level.
	Level string `yaml:"level"`
	// Encoding is the log output encoding: "console" or "json".
	Encoding string `yaml:"encoding"`
	// Development enables development-friendly output.
	Development bool `yaml:"development"`
}

// WatchConfig holds settings for the front-page watch loop.
type WatchConfig struct {
	// BaseURL is the aggregator root; the front page and comment pages
	// are resolved against it.
	BaseURL string `yaml:"base_url"`
	// PollInterval is the fixed delay between front-page polls.
	PollInterval time.Duration `yaml:"poll_interval"`
	// TopStoryCount limits how many front-page entries are considered per poll.
	TopStoryCount int `yaml:"top_story_count"`
	// MaxConcurrentDownloads caps simultaneously in-flight downloads
	// across all stories.
	MaxConcurrentDownloads int `yaml:"max_concurrent_downloads"`
	// DownloadTimeout bounds each individual HTTP fetch.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	// OutputDir is the root directory for per-story download directories.
	OutputDir string `yaml:"output_dir"`
	// UserAgent is sent on every outgoing request.
	UserAgent string `yaml:"user_agent"`
	// FetchStoryArticle also downloads the story's own article into the
	// story directory, alongside its comment links.
	FetchStoryArticle bool `yaml:"fetch_story_article"`
}

// Config is the root application configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Logger LoggerConfig `yaml:"logger"`
	Watch  WatchConfig  `yaml:"watch"`
}

// Load builds a Config from the current Viper state and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Environment: viper.GetString("app.environment"),
			Debug:       viper.GetBool("app.debug"),
		},
		Logger: LoggerConfig{
			Level:       viper.GetString("logger.level"),
			Encoding:    viper.GetString("logger.encoding"),
			Development: viper.GetBool("logger.development"),
		},
		Watch: WatchConfig{
			BaseURL:                viper.GetString("watch.base_url"),
			PollInterval:           viper.GetDuration("watch.poll_interval"),
			TopStoryCount:          viper.GetInt("watch.top_story_count"),
			MaxConcurrentDownloads: viper.GetInt("watch.max_concurrent_downloads"),
			DownloadTimeout:        viper.GetDuration("watch.download_timeout"),
			OutputDir:              viper.GetString("watch.output_dir"),
			UserAgent:              viper.GetString("watch.user_agent"),
			FetchStoryArticle:      viper.GetBool("watch.fetch_story_article"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults registers default values with Viper. Called once during
// CLI initialization, before flags and the config file are read.
func SetDefaults() {
	viper.SetDefault("app", map[string]any{
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "console",
		"development": false,
	})

	viper.SetDefault("watch", map[string]any{
		"base_url":                 DefaultBaseURL,
		"poll_interval":            DefaultPollInterval.String(),
		"top_story_count":          DefaultTopStoryCount,
		"max_concurrent_downloads": DefaultMaxConcurrentDownloads,
		"download_timeout":         DefaultDownloadTimeout.String(),
		"output_dir":               DefaultOutputDir,
		"user_agent":               DefaultUserAgent,
		"fetch_story_article":      true,
	})
}

// Validate checks the configuration for values the watch loop cannot run with.
func (c *Config) Validate() error {
	if err := c.Watch.Validate(); err != nil {
		return err
	}

	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.App.Environment)
	}

	return nil
}

// Validate checks the watch settings.
func (c *WatchConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url must be specified")
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil || !parsed.IsAbs() {
		return fmt.Errorf("base_url must be an absolute URL: %q", c.BaseURL)
	}

	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}

	if c.TopStoryCount <= 0 {
		return errors.New("top_story_count must be positive")
	}

	if c.MaxConcurrentDownloads <= 0 {
		return errors.New("max_concurrent_downloads must be positive")
	}

	if c.DownloadTimeout <= 0 {
		return errors.New("download_timeout must be positive")
	}

	if c.OutputDir == "" {
		return errors.New("output_dir must be specified")
	}

	return nil
}
