// Package config provides configuration management for the triplet forecasting engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Forecast  ForecastConfig  `mapstructure:"forecast" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration.
// Only required when draws are read from or runs are written to Postgres.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// DataConfig selects where observations are loaded from
type DataConfig struct {
	Source  string         `mapstructure:"source" validate:"required,oneof=csv postgres http"`
	CSVPath string         `mapstructure:"csv_path"`
	URL     string         `mapstructure:"url" validate:"omitempty,url"`
	HTTP    HTTPDataConfig `mapstructure:"http"`
}

// HTTPDataConfig tunes the client used by the http source
type HTTPDataConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// EngineConfig holds the statistical model and evaluation settings
type EngineConfig struct {
	MinTrain             int     `mapstructure:"min_train" validate:"required,min=1"`
	AlphaTriplet         float64 `mapstructure:"alpha_triplet" validate:"gte=0"`
	AlphaPos             float64 `mapstructure:"alpha_pos" validate:"gte=0"`
	Mix                  float64 `mapstructure:"mix" validate:"gte=0,lte=1"`
	TopKs                []int   `mapstructure:"top_ks" validate:"required,min=1,topks"`
	TopN                 int     `mapstructure:"top_n" validate:"required,min=1"`
	TopKPerPosition      int     `mapstructure:"top_k_per_position" validate:"required,min=1,max=10"`
	Grouping             string  `mapstructure:"grouping" validate:"required,grouping"`
	Ranking              string  `mapstructure:"ranking" validate:"required,ranking"`
	Workers              int     `mapstructure:"workers" validate:"required,min=1"`
	MinGroupObservations int     `mapstructure:"min_group_observations" validate:"required,min=1"`
}

// BacktestConfig represents backtest output settings
type BacktestConfig struct {
	OutputPath           string `mapstructure:"output_path" validate:"required"`
	WriteCSV             bool   `mapstructure:"write_csv"`
	WriteJSON            bool   `mapstructure:"write_json"`
	PersistRuns          bool   `mapstructure:"persist_runs"`
	MonteCarloIterations int    `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	MonteCarloSeed       int64  `mapstructure:"monte_carlo_seed"`
	WalkForwardWindow    int    `mapstructure:"walk_forward_window" validate:"gte=0"`
}

// ForecastConfig represents forward prediction settings
type ForecastConfig struct {
	Horizon             int    `mapstructure:"horizon" validate:"required,min=1"`
	CacheTTLSeconds     int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheCleanupSeconds int    `mapstructure:"cache_cleanup_seconds" validate:"required,gt=0"`
	OutputPath          string `mapstructure:"output_path" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents the periodic re-evaluation used by serve
type SchedulerConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	BacktestCron string   `mapstructure:"backtest_cron" validate:"omitempty,cronspec"`
	Groupings    []string `mapstructure:"groupings" validate:"omitempty,dive,grouping"`
}

// SecretsConfig points at an AWS Secrets Manager secret overlaying credentials
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesDatabase reports whether any enabled feature needs Postgres
func (c *Config) UsesDatabase() bool {
	return c.Data.Source == "postgres" || c.Backtest.PersistRuns
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
