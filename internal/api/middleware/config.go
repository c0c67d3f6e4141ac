package middleware

import (
	"time"

	"github.com/jcferry08/dwelltime/internal/config"
)

const (
	defaultRPS             = 50
	defaultCleanupInterval = 5 * time.Minute
	defaultIdleTimeout     = time.Hour
	defaultMaxClients      = 10_000
)

// Config holds rate limiter configuration. Burst defaults to twice the
// sustained rate, allowing a two-second spike.
type Config struct {
	RequestsPerSecond int
	Burst             int

	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	MaxClients      int
}

// LoadConfig loads rate limiter config from environment variables with
// fallback to defaults.
func LoadConfig() *Config {
	rps := config.GetEnvInt("DWELLTIME_RATE_LIMIT_RPS", defaultRPS)

	burst := config.GetEnvInt("DWELLTIME_RATE_LIMIT_BURST", 0)
	if burst <= 0 {
		burst = 2 * rps
	}

	return &Config{
		RequestsPerSecond: rps,
		Burst:             burst,
		CleanupInterval:   config.GetEnvDuration("DWELLTIME_RATE_LIMIT_CLEANUP_INTERVAL", defaultCleanupInterval),
		IdleTimeout:       config.GetEnvDuration("DWELLTIME_RATE_LIMIT_IDLE_TIMEOUT", defaultIdleTimeout),
		MaxClients:        config.GetEnvInt("DWELLTIME_RATE_LIMIT_MAX_CLIENTS", defaultMaxClients),
	}
}
