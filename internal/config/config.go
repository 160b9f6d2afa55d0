// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const maxCurrencyScale = 8

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	// Database
	DBPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Splitting
	SplitTolerance decimal.Decimal
	CurrencyScale  int32
}

// Load reads the file named by ENV_FILE, or .env from the working directory
// if present, then the environment. Variables already set in the environment
// take precedence over the file. Unparseable numeric values fall back to
// their defaults.
func Load() (*Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	} else {
		_ = godotenv.Load()
	}
	return fromEnv(), nil
}

func fromEnv() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DBPath: getEnv("DB_PATH", "./data/expenses.db"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		SplitTolerance: getEnvDecimal("SPLIT_TOLERANCE", decimal.New(1, -6)),
		CurrencyScale:  int32(getEnvInt("CURRENCY_SCALE", 2)),
	}
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}
	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if c.SplitTolerance.IsNegative() {
		errors = append(errors, fmt.Sprintf("invalid split tolerance %s: must not be negative", c.SplitTolerance))
	}
	if c.CurrencyScale < 0 || c.CurrencyScale > maxCurrencyScale {
		errors = append(errors, fmt.Sprintf("invalid currency scale %d: must be between 0 and %d", c.CurrencyScale, maxCurrencyScale))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
