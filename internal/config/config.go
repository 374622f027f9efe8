// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"strings"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MaxUploadBytes caps a single CSV body.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// QueueSize bounds the async analysis queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many upload digests are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// JobHistory caps how many async jobs stay pollable.
	JobHistory int `koanf:"job_history"`

	// StoreDriver selects the profile store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the connection string for the sql drivers.
	StoreDSN string `koanf:"store_dsn"`

	// RecencyHalfLifeDays is the decay constant of the recency score.
	RecencyHalfLifeDays float64 `koanf:"recency_half_life_days"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		MaxUploadBytes:      10 << 20,
		QueueSize:           1024,
		WorkerCount:         4,
		DedupeSize:          10_000,
		JobHistory:          10_000,
		StoreDriver:         DriverMemory,
		RecencyHalfLifeDays: 90,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive, got %d", ErrInvalidConfig, c.MaxUploadBytes)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.JobHistory <= 0:
		return fmt.Errorf("%w: job_history must be positive, got %d", ErrInvalidConfig, c.JobHistory)
	case c.RecencyHalfLifeDays <= 0:
		return fmt.Errorf("%w: recency_half_life_days must be positive, got %v", ErrInvalidConfig, c.RecencyHalfLifeDays)
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
