// Package config provides configuration management for the Pitchside analysis service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	SportsAPI SportsAPIConfig `mapstructure:"sports_api" validate:"required"`
	AIService AIServiceConfig `mapstructure:"ai_service" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Quota     QuotaConfig     `mapstructure:"quota" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// SportsAPIConfig represents the sports-data provider configuration
type SportsAPIConfig struct {
	APIURL             string  `mapstructure:"api_url" validate:"required,url"`
	StreamURL          string  `mapstructure:"stream_url"`
	APIKey             string  `mapstructure:"api_key" validate:"required"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	FormMatchLimit     int     `mapstructure:"form_match_limit" validate:"required,gt=0,lte=10"`
	H2HMatchLimit      int     `mapstructure:"h2h_match_limit" validate:"required,gt=0,lte=10"`
}

// AIServiceConfig represents the reasoning-service configuration
type AIServiceConfig struct {
	APIURL         string `mapstructure:"api_url" validate:"required,url"`
	APIKey         string `mapstructure:"api_key" validate:"required"`
	Model          string `mapstructure:"model" validate:"required"`
	MaxTokens      int    `mapstructure:"max_tokens" validate:"required,gt=0"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	Enabled        bool   `mapstructure:"enabled"`
}

// CacheConfig holds per-kind TTLs for upstream response caches
type CacheConfig struct {
	FixtureTTLSeconds     int `mapstructure:"fixture_ttl_seconds" validate:"required,gt=0"`
	FixtureListTTLSeconds int `mapstructure:"fixture_list_ttl_seconds" validate:"required,gt=0"`
	FormTTLSeconds        int `mapstructure:"form_ttl_seconds" validate:"required,gt=0"`
	H2HTTLSeconds         int `mapstructure:"h2h_ttl_seconds" validate:"required,gt=0"`
	OddsTTLSeconds        int `mapstructure:"odds_ttl_seconds" validate:"required,gt=0"`
}

// QuotaConfig represents the paywall gate configuration
type QuotaConfig struct {
	DailyFreeLimit      int    `mapstructure:"daily_free_limit" validate:"required,gt=0"`
	PremiumDurationDays int    `mapstructure:"premium_duration_days" validate:"required,gt=0"`
	Timezone            string `mapstructure:"timezone" validate:"required,timezone_name"`
	ConsumeRetryLimit   int    `mapstructure:"consume_retry_limit" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents prefetch scheduling configuration
type SchedulerConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	PrefetchCron string   `mapstructure:"prefetch_cron"`
	Leagues      []string `mapstructure:"leagues"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// AITimeout returns the bounded timeout applied to each reasoning-service call
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AIService.TimeoutSeconds) * time.Second
}

// PremiumDuration returns the fixed duration added on a premium grant
func (c *Config) PremiumDuration() time.Duration {
	return time.Duration(c.Quota.PremiumDurationDays) * 24 * time.Hour
}
