// Package config provides configuration management for the triplet forecasting engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "TRIPLET_FORECAST"

const defaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the configuration when TRIPLET_FORECAST_CONFIG_PATH is set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(EnvPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "triplet-forecast")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("data.source", "csv")
	v.SetDefault("data.csv_path", "data/draws.csv")
	v.SetDefault("data.http.timeout_seconds", 30)
	v.SetDefault("data.http.max_retries", 5)
	v.SetDefault("data.http.rate_limit", 10.0)

	v.SetDefault("engine.min_train", 50)
	v.SetDefault("engine.alpha_triplet", 1.0)
	v.SetDefault("engine.alpha_pos", 1.0)
	v.SetDefault("engine.mix", 0.5)
	v.SetDefault("engine.top_ks", []int{1, 5, 10, 20})
	v.SetDefault("engine.top_n", 50)
	v.SetDefault("engine.top_k_per_position", 6)
	v.SetDefault("engine.grouping", "monthly")
	v.SetDefault("engine.ranking", "exact")
	v.SetDefault("engine.workers", 1)
	v.SetDefault("engine.min_group_observations", 1)

	v.SetDefault("backtest.output_path", "output")
	v.SetDefault("backtest.write_csv", true)
	v.SetDefault("backtest.write_json", false)
	v.SetDefault("backtest.monte_carlo_iterations", 0)
	v.SetDefault("backtest.walk_forward_window", 0)

	v.SetDefault("forecast.horizon", 365)
	v.SetDefault("forecast.cache_ttl_seconds", 600)
	v.SetDefault("forecast.cache_cleanup_seconds", 1200)
	v.SetDefault("forecast.output_path", "output")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.backtest_cron", "0 3 * * *")
	v.SetDefault("scheduler.groupings", []string{"weekly", "monthly"})
}
