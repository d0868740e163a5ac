package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures process level configuration.
type Config struct {
	Port                 string
	DatabaseURL          string
	StoreDriver          string
	RedisURL             string
	CatalogCacheTTL      time.Duration
	TokenHeader          string
	SlowRequestThreshold time.Duration
	RequestTimeout       time.Duration
	LogLevel             string
	ErrorSampleRate      int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StoreDriver: getenv("STORE_DRIVER", DriverPostgres),
		RedisURL:    os.Getenv("REDIS_URL"),
		TokenHeader: getenv("TOKEN_HEADER", "UserToken"),
		LogLevel:    getenv("LOG_LEVEL", "INFO"),
	}

	var err error
	if cfg.CatalogCacheTTL, err = durationEnv("CATALOG_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequestThreshold, err = durationEnv("SLOW_REQUEST_THRESHOLD", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ErrorSampleRate, err = intEnv("ERROR_SAMPLE_RATE", 1); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate checks that the selected store driver has what it needs.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for store driver %q", c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (use: %s, %s)", c.StoreDriver, DriverPostgres, DriverMemory)
	}
	if c.TokenHeader == "" {
		return fmt.Errorf("TOKEN_HEADER cannot be empty")
	}
	return nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}
