// Package config provides configuration management for the what-if futures analyzer.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Analysis   AnalysisConfig   `mapstructure:"analysis" validate:"required"`
	DataSource DataSourceConfig `mapstructure:"data_source" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
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

// AnalysisConfig represents metrics and scenario engine configuration
type AnalysisConfig struct {
	StartingCapital       float64 `mapstructure:"starting_capital" validate:"required,gt=0"`
	RiskFreeRate          float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	CapitalAllocationPct  float64 `mapstructure:"capital_allocation_pct" validate:"gt=0,lte=100"`
	ResultCacheTTLSeconds int     `mapstructure:"result_cache_ttl_seconds" validate:"required,gt=0"`
}

// DataSourceConfig represents market-data ingestion configuration
type DataSourceConfig struct {
	APIURL                string  `mapstructure:"api_url" validate:"required,url"`
	StreamURL             string  `mapstructure:"stream_url"`
	APIKey                string  `mapstructure:"api_key"`
	RateLimitPerSecond    float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	SyncSchedule          string  `mapstructure:"sync_schedule" validate:"required"`
	BackfillDays          int     `mapstructure:"backfill_days" validate:"required,gt=0"`
	StreamEnabled         bool    `mapstructure:"stream_enabled"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	MaxRetries            int     `mapstructure:"max_retries" validate:"gte=0"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
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
