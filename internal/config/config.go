// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/mmynk/giftregistry/internal/storage"
)

// Config holds all application configuration.
type Config struct {
	// DatabaseURL selects the engine: postgres:// and postgresql:// use
	// PostgreSQL, anything else is a SQLite path (sqlite:// and file: accepted).
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	DBMaxConns       int           `envconfig:"DB_MAX_CONNS" default:"5"`
	DBAcquireTimeout time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// MetricsAddr enables the Prometheus listener when set (e.g. ":9090").
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges envconfig cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns))
	}
	if c.DBAcquireTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DB_ACQUIRE_TIMEOUT must be positive, got %s", c.DBAcquireTimeout))
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// PoolOptions returns the pool limits from the configuration.
func (c Config) PoolOptions() storage.PoolOptions {
	return storage.PoolOptions{
		MaxConns:       c.DBMaxConns,
		AcquireTimeout: c.DBAcquireTimeout,
	}
}
