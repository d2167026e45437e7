// Package config loads the service's environment-driven configuration,
// grounded on the teacher's getEnv pattern (cmd/server/main.go).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DatabaseURL string
	RedisAddr   string

	DirectionsAPIKey  string
	DirectionsBaseURL string

	// MaxInFlightMaterializations bounds concurrent directions-provider
	// calls during a single materialization (spec §4.2).
	MaxInFlightMaterializations int

	// OptimizerTimeBudget is loaded from the environment but is not passed
	// to the optimizer: each optimize request carries its own time budget,
	// and the optimizer uses 60s when that is zero.
	OptimizerTimeBudget time.Duration

	// DirectionsTimeout bounds a single provider.GetRoute call (spec §5,
	// default 15s).
	DirectionsTimeout time.Duration
	// MaterializationTimeout bounds one vehicle's whole materialization —
	// the directions call plus waypoint matching (spec §5, default 60s).
	MaterializationTimeout time.Duration
}

// Load reads configuration from the environment, falling back to .env via
// godotenv when present, matching the teacher's startup sequence
// (cmd/server/main.go).
func Load(loadDotenv func() error) (Config, error) {
	if loadDotenv != nil {
		if err := loadDotenv(); err != nil {
			// Absence of a .env file is not an error outside local dev.
		}
	}

	cfg := Config{
		Port:                        getEnv("PORT", "8080"),
		DatabaseURL:                 os.Getenv("DATABASE_URL"),
		RedisAddr:                   getEnv("REDIS_ADDR", "localhost:6379"),
		DirectionsAPIKey:            os.Getenv("DIRECTIONS_API_KEY"),
		DirectionsBaseURL:           os.Getenv("DIRECTIONS_BASE_URL"),
		MaxInFlightMaterializations: getEnvInt("MAX_IN_FLIGHT_MATERIALIZATIONS", 4),
		OptimizerTimeBudget:         getEnvSeconds("OPTIMIZER_TIME_BUDGET_SECONDS", 60),
		DirectionsTimeout:           getEnvSeconds("DIRECTIONS_TIMEOUT_SECONDS", 15),
		MaterializationTimeout:      getEnvSeconds("MATERIALIZATION_TIMEOUT_SECONDS", 60),
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if strings.TrimSpace(cfg.DirectionsAPIKey) == "" {
		return Config{}, fmt.Errorf("config: DIRECTIONS_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvSeconds(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackSeconds)) * time.Second
}
