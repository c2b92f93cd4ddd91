// Package config provides configuration loading and validation utilities.
package config

import (
	"time"

	"github.com/weks-labs/rewards-bot/pkg/redis"
)

// Config holds runtime configuration for the rewards service.
type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	Log       LogConfig       `mapstructure:"log"`
	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     redis.Config    `mapstructure:"redis" validate:"required"`
	Rewards   RewardsConfig   `mapstructure:"rewards" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// LogConfig controls optional file output with rotation.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RewardsConfig carries the crediting policy knobs.
type RewardsConfig struct {
	DailyCap        int64 `mapstructure:"daily_cap" validate:"gt=0"`
	CoinsPerCorrect int64 `mapstructure:"coins_per_correct" validate:"gt=0"`
	ReferralBonus   int64 `mapstructure:"referral_bonus" validate:"gte=0"`
}

// BotConfig configures the Telegram bot transport.
type BotConfig struct {
	Token         string        `mapstructure:"token" validate:"required"`
	Mode          string        `mapstructure:"mode" validate:"oneof=webhook longpoll"`
	WebhookListen string        `mapstructure:"webhook_listen"`
	WebhookURL    string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook,omitempty,url"`
	PollTimeout   time.Duration `mapstructure:"poll_timeout"`
	WebAppURL     string        `mapstructure:"webapp_url" validate:"required,url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RateLimitConfig configures claim rate limiting.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Backend string        `mapstructure:"backend" validate:"omitempty,oneof=redis memory"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// JobsConfig configures background maintenance tasks.
type JobsConfig struct {
	ReconcileCron string `mapstructure:"reconcile_cron"`
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Bot.Mode == "" {
		c.Bot.Mode = "longpoll"
	}
	if c.Bot.PollTimeout <= 0 {
		c.Bot.PollTimeout = 10 * time.Second
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "redis"
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 30
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Jobs.ReconcileCron == "" {
		c.Jobs.ReconcileCron = "*/30 * * * *"
	}
}
