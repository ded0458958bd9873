package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Project
	ProjectID string

	// Metrics source
	PrometheusURL   string
	MetricsDuration time.Duration

	// Storage
	StorageEnabled bool
	DatabaseURL    string

	// Explanation collaborator
	ExplainerURL     string
	ExplainerTimeout time.Duration

	// HTTP server
	ListenAddr string

	// Scheduled analysis
	AnalysisSchedule string

	// Rule/threshold file (optional; built-in defaults when empty)
	ThresholdsPath string

	// Output
	OutputFormat string // text, json
	Verbose      bool
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		ProjectID:        getEnv("PROJECT_ID", "default"),
		PrometheusURL:    getEnv("PROMETHEUS_URL", "http://localhost:9090"),
		MetricsDuration:  getEnvDuration("METRICS_DURATION", 7*24*time.Hour),
		StorageEnabled:   getEnvBool("STORAGE_ENABLED", true),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost port=5432 user=runix password=devpassword dbname=runix sslmode=disable"),
		ExplainerURL:     getEnv("EXPLAINER_URL", ""),
		ExplainerTimeout: getEnvDuration("EXPLAINER_TIMEOUT", 10*time.Second),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		AnalysisSchedule: getEnv("ANALYSIS_SCHEDULE", "0 * * * *"),
		ThresholdsPath:   getEnv("THRESHOLDS_PATH", ""),
		OutputFormat:     "text",
		Verbose:          false,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if hours, err := strconv.Atoi(value); err == nil {
			return time.Duration(hours) * time.Hour
		}
	}
	return defaultValue
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.StorageEnabled && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set when storage is enabled")
	}
	if c.MetricsDuration < 1*time.Hour {
		return fmt.Errorf("metrics duration must be at least 1 hour")
	}
	return nil
}
