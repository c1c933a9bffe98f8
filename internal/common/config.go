package common

import (
	"os"
	"strconv"
	"time"

	"github.com/invoiceai/extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Quota  QuotaConfig
	Dedup  DedupConfig
	Ingest IngestConfig
}

// QuotaConfig holds admission-control configuration
type QuotaConfig struct {
	MaxRequests int
	Window      time.Duration
}

// DedupConfig holds duplicate-suppression configuration
type DedupConfig struct {
	Retention time.Duration
}

// IngestConfig holds document intake configuration
type IngestConfig struct {
	MaxFileBytes int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Quota: QuotaConfig{
			MaxRequests: getEnvAsInt("QUOTA_MAX_REQUESTS", 10),
			Window:      getEnvAsDuration("QUOTA_WINDOW", 24*time.Hour),
		},
		Dedup: DedupConfig{
			Retention: getEnvAsDuration("DEDUP_RETENTION", 24*time.Hour),
		},
		Ingest: IngestConfig{
			MaxFileBytes: getEnvAsInt64("MAX_FILE_BYTES", constants.MaxFileBytes),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
