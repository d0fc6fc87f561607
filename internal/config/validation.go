// Package config provides configuration management for the triplet forecasting engine.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// customRules are the tags registered on every validator
var customRules = map[string]validator.Func{
	"environment": validateEnvironment,
	"loglevel":    validateLogLevel,
	"grouping":    validateGrouping,
	"ranking":     validateRanking,
	"topks":       validateTopKs,
	"cronspec":    validateCronSpec,
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() (*CustomValidator, error) {
	v := validator.New()
	if err := registerRules(v, customRules); err != nil {
		return nil, err
	}
	return &CustomValidator{validator: v}, nil
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return nil
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv, err := NewValidator()
	if err != nil {
		return err
	}
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateGrouping accepts the grouping names the backtester understands
func validateGrouping(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "constant", "weekly", "monthly", "month":
		return true
	default:
		return false
	}
}

func validateRanking(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "exact", "approximate":
		return true
	default:
		return false
	}
}

// validateTopKs requires positive, strictly ascending cut-offs
func validateTopKs(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice || field.Len() == 0 {
		return false
	}
	prev := int64(0)
	for i := 0; i < field.Len(); i++ {
		k := field.Index(i).Int()
		if k < 1 || k <= prev {
			return false
		}
		prev = k
	}
	return true
}

func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Data.Source == "csv" && strings.TrimSpace(cfg.Data.CSVPath) == "" {
		return fmt.Errorf("data.csv_path is required when data.source is csv")
	}

	if cfg.Data.Source == "http" && strings.TrimSpace(cfg.Data.URL) == "" {
		return fmt.Errorf("data.url is required when data.source is http")
	}

	if cfg.UsesDatabase() {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when postgres is used")
		}
		if cfg.Database.Port == 0 {
			return fmt.Errorf("database port is required when postgres is used")
		}
	}

	if cfg.IsProduction() && cfg.UsesDatabase() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.BacktestCron == "" {
		return fmt.Errorf("scheduler.backtest_cron is required when the scheduler is enabled")
	}

	if cfg.Secrets.Enabled && (cfg.Secrets.Region == "" || cfg.Secrets.SecretName == "") {
		return fmt.Errorf("secrets region and secret_name are required when secrets are enabled")
	}

	if cfg.Engine.TopN > 1000 {
		return fmt.Errorf("engine.top_n cannot exceed the 1000 possible triplets")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "grouping":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: constant, weekly, monthly, month, got '%v'\n", field, value)
		case "ranking":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: exact, approximate, got '%v'\n", field, value)
		case "topks":
			errMsg += fmt.Sprintf("- Field '%s' must hold positive ascending cut-offs, got '%v'\n", field, value)
		case "cronspec":
			errMsg += fmt.Sprintf("- Field '%s' is not a valid cron expression: '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
