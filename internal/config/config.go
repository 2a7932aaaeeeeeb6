package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
)

// Config represents the complete application configuration
type Config struct {
	Fitter   FitterConfig
	Server   ServerConfig
	Analysis AnalysisConfig
}

// FitterConfig holds the external regression service settings
type FitterConfig struct {
	URL        string
	TimeoutSec int
	// Options is an opaque JSON object forwarded to the fitter.
	Options string
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// AnalysisConfig holds analysis defaults
type AnalysisConfig struct {
	Cutoff      float64
	NTree       int
	Seed        int64
	SearchBound float64
	Workers     int
}

// Load reads configuration from a .env file (when present) and the
// environment, then validates it.
func Load() (*Config, error) {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		Fitter: FitterConfig{
			URL:        os.Getenv("FITTER_URL"),
			TimeoutSec: getEnvIntOrDefault("FITTER_TIMEOUT_SEC", 60),
			Options:    os.Getenv("FITTER_OPTIONS"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Analysis: AnalysisConfig{
			Cutoff:      getEnvFloatOrDefault("SENSI_CUTOFF", 2.0),
			NTree:       getEnvIntOrDefault("SENSI_NTREE", 100),
			Seed:        int64(getEnvIntOrDefault("SENSI_SEED", 42)),
			SearchBound: getEnvFloatOrDefault("SENSI_SEARCH_BOUND", 50),
			Workers:     getEnvIntOrDefault("SENSI_WORKERS", 1),
		},
	}

	if cfg.Fitter.Options != "" && !gjson.Valid(cfg.Fitter.Options) {
		return nil, fmt.Errorf("FITTER_OPTIONS is not valid JSON")
	}
	if cfg.Analysis.Cutoff <= 0 {
		return nil, fmt.Errorf("SENSI_CUTOFF must be positive")
	}
	if cfg.Analysis.NTree < 1 {
		return nil, fmt.Errorf("SENSI_NTREE must be at least 1")
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

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
