// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Supported source and sink kinds
const (
	KindCSV       = "csv"
	KindPostgres  = "postgres"
	KindSnowflake = "snowflake"
)

// Config represents the application configuration
type Config struct {
	// Where transactions are read from and features written to
	Source     string
	Sink       string
	InputPath  string
	OutputPath string

	// Database connections, loaded only when a source or sink needs them
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig

	// Pipeline settings
	BatchSize        int
	Timezone         string
	VelocitySentinel string // empty disables, "nan" or a number enables

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Source:           strings.ToLower(getEnv("FEATURES_SOURCE", KindCSV)),
		Sink:             strings.ToLower(getEnv("FEATURES_SINK", KindCSV)),
		InputPath:        getEnv("INPUT_PATH", "data/Fraud_Data.csv"),
		OutputPath:       getEnv("OUTPUT_PATH", "data/processed_fraud_data.csv"),
		BatchSize:        getEnvAsInt("BATCH_SIZE", 1000),
		Timezone:         getEnv("TIMEZONE", "UTC"),
		VelocitySentinel: getEnv("VELOCITY_SENTINEL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.LoadDatabases(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabases loads the database configuration required by Source and Sink
func (c *Config) LoadDatabases() error {
	if c.Source == KindSnowflake && c.Snowflake == nil {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		c.Snowflake = snowConfig
	}

	if (c.Source == KindPostgres || c.Sink == KindPostgres) && c.Postgres == nil {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
		}
		c.Postgres = pgConfig
	}
	return nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source {
	case KindCSV:
		if c.InputPath == "" {
			return errors.New("input path is required for csv source")
		}
	case KindPostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required")
		}
	case KindSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required")
		}
	default:
		return fmt.Errorf("unsupported source %q", c.Source)
	}

	switch c.Sink {
	case KindCSV:
		if c.OutputPath == "" {
			return errors.New("output path is required for csv sink")
		}
	case KindPostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required")
		}
	default:
		return fmt.Errorf("unsupported sink %q", c.Sink)
	}

	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	if _, err := c.Sentinel(); err != nil {
		return err
	}

	return nil
}

// Sentinel parses VelocitySentinel. It returns nil when sanitizing is disabled.
func (c *Config) Sentinel() (*float64, error) {
	raw := strings.TrimSpace(c.VelocitySentinel)
	if raw == "" {
		return nil, nil
	}
	if strings.EqualFold(raw, "nan") {
		v := math.NaN()
		return &v, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid velocity sentinel %q: %w", raw, err)
	}
	return &v, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		v = strings.Trim(strings.TrimSpace(v), `"`)
		if v != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}
	return result
}
