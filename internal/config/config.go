package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// User whose scenario document and cache entries this instance owns.
	UserID string

	// Data source
	DataSource    string
	DataDirectory string

	// Runway knobs
	PeriodMonths        int
	ProjectionCapMonths int
	GrowthCapMultiplier int

	// Scenario persistence
	ScenarioStore string
	SQLiteDBPath  string
	RedisAddr     string

	// Scenario write-behind timings
	ScenarioDebounce     time.Duration
	ScenarioEchoSuppress time.Duration

	// AMQP refresh events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	cfg := &Config{
		Port:   getEnv("PORT", "8081"),
		UserID: getEnv("USER_ID", "local"),

		DataSource:    getEnv("DATA_SOURCE", "demo"),
		DataDirectory: getEnv("DATA_DIRECTORY", "./data"),

		PeriodMonths:        getEnvInt("PERIOD_MONTHS", 6),
		ProjectionCapMonths: getEnvInt("PROJECTION_CAP_MONTHS", 24),
		GrowthCapMultiplier: getEnvInt("GROWTH_CAP_MULTIPLIER", 2),

		ScenarioStore: getEnv("SCENARIO_STORE", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/dashboard.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),

		ScenarioDebounce:     getEnvDuration("SCENARIO_DEBOUNCE", 500*time.Millisecond),
		ScenarioEchoSuppress: getEnvDuration("SCENARIO_ECHO_SUPPRESS", 100*time.Millisecond),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "dashboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_refreshed"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.UserID) == "" {
		errors = append(errors, "user id cannot be empty")
	}

	// Validate data source
	validSources := []string{"demo"}
	isValidSource := false
	for _, source := range validSources {
		if c.DataSource == source {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, validSources))
	}

	// Validate scenario store selection
	switch c.ScenarioStore {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite scenario store")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "redis":
		if c.RedisAddr == "" {
			errors = append(errors, "REDIS_ADDR cannot be empty when using redis scenario store")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid scenario store '%s': must be 'sqlite' or 'redis'", c.ScenarioStore))
	}

	// Validate runway knobs
	if c.PeriodMonths != 3 && c.PeriodMonths != 6 && c.PeriodMonths != 12 {
		errors = append(errors, fmt.Sprintf("invalid period months %d: must be 3, 6, or 12", c.PeriodMonths))
	}
	if c.ProjectionCapMonths < 1 || c.ProjectionCapMonths > 120 {
		errors = append(errors, fmt.Sprintf("invalid projection cap %d: must be between 1 and 120", c.ProjectionCapMonths))
	}
	if c.GrowthCapMultiplier < 1 {
		errors = append(errors, fmt.Sprintf("invalid growth cap multiplier %d: must be at least 1", c.GrowthCapMultiplier))
	}

	// Validate scenario timings
	if c.ScenarioDebounce < 10*time.Millisecond || c.ScenarioDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid scenario debounce %v: must be between 10ms and 1m", c.ScenarioDebounce))
	}
	if c.ScenarioEchoSuppress < time.Millisecond || c.ScenarioEchoSuppress > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid scenario echo suppress %v: must be between 1ms and 1m", c.ScenarioEchoSuppress))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Sheet name matters only when an export spreadsheet is configured
	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google sheet name is required when a spreadsheet ID is provided")
	}

	// Return combined errors
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
