// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir    string // Base directory for telemetry storage, always absolute
	ContentDir string // Directory of icon physics JSON files; empty means built-ins only
	Port       int
	LogLevel   string
	DevMode    bool

	// Simulation tuning
	TickRate  time.Duration // wall-clock interval between ticks
	TickDT    float64       // simulated time advanced per tick
	MixedInit bool          // start registers maximally mixed
	Seed      int64         // measurement sampler seed, 0 means time-seeded

	// Telemetry
	Retention     time.Duration // snapshot retention window
	RetentionCron string        // cron schedule for the retention job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("WHEAT_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		ContentDir:    getEnv("WHEAT_CONTENT_DIR", ""),
		Port:          getEnvAsInt("WHEAT_PORT", 8011),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		TickRate:      getEnvAsDuration("WHEAT_TICK_RATE", 100*time.Millisecond),
		TickDT:        getEnvAsFloat("WHEAT_TICK_DT", 0.01),
		MixedInit:     getEnvAsBool("WHEAT_MIXED_INIT", false),
		Seed:          int64(getEnvAsInt("WHEAT_SEED", 0)),
		Retention:     getEnvAsDuration("WHEAT_RETENTION", 24*time.Hour),
		RetentionCron: getEnv("WHEAT_RETENTION_CRON", "@hourly"),
	}

	if cfg.TickDT <= 0 {
		return nil, fmt.Errorf("WHEAT_TICK_DT must be positive, got %v", cfg.TickDT)
	}
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("WHEAT_TICK_RATE must be positive, got %v", cfg.TickRate)
	}

	return cfg, nil
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
