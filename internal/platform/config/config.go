package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	HourlyInterval  time.Duration
	NightlyInterval time.Duration

	ThresholdCacheTTL     time.Duration
	CorrelationSampleSize int

	EnableHourlyPipeline  bool
	EnableNightlyPipeline bool
	RunMigrations         bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "arbiter"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		HourlyInterval:  envDuration("HOURLY_PIPELINE_INTERVAL", time.Hour),
		NightlyInterval: envDuration("NIGHTLY_PIPELINE_INTERVAL", 24*time.Hour),

		ThresholdCacheTTL:     envDuration("THRESHOLD_CACHE_TTL", time.Hour),
		CorrelationSampleSize: envInt("CORRELATION_SAMPLE_SIZE", 200),

		EnableHourlyPipeline:  envBool("ENABLE_HOURLY_PIPELINE", true),
		EnableNightlyPipeline: envBool("ENABLE_NIGHTLY_PIPELINE", true),
		RunMigrations:         envBool("RUN_MIGRATIONS", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
