package config

import (
	"os"
	"strconv"

	"estiscan/domain/estimate"
	"estiscan/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Estimator EstimatorConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds run-persistence settings; URL may be empty, in which
// case runs are not persisted.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// EstimatorConfig holds the engine defaults applied when a request leaves
// them unset
type EstimatorConfig struct {
	K            int
	Workers      int
	Permutations int
	Seed         int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Estimator: EstimatorConfig{
			K:            getEnvIntOrDefault("ESTIMATOR_K", estimate.DefaultK),
			Workers:      getEnvIntOrDefault("ESTIMATOR_WORKERS", 0),
			Permutations: getEnvIntOrDefault("ESTIMATOR_PERMUTATIONS", 0),
			Seed:         int64(getEnvIntOrDefault("ESTIMATOR_SEED", 0)),
		},
	}

	if cfg.Estimator.K < 1 {
		return nil, errors.ConfigError("ESTIMATOR_K must be at least 1")
	}
	if cfg.Estimator.Permutations < 0 {
		return nil, errors.ConfigError("ESTIMATOR_PERMUTATIONS cannot be negative")
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
