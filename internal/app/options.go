package service

import (
	"time"

	"github.com/okian/dfspersona/internal/adapters/repository"
	"github.com/okian/dfspersona/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the async analysis queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many upload digests are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxUploadBytes caps a CSV body.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithStoreDriver selects the profile store opened by Start.
func WithStoreDriver(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
			s.storeDSN = dsn
		}
	}
}

// WithStore injects an already opened store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRecencyHalfLife sets the recency decay constant in days.
func WithRecencyHalfLife(days float64) Option {
	return func(s *Service) {
		if days > 0 {
			s.halfLifeDays = days
		}
	}
}

// WithClock sets the time source for analysis reference time and job stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJobHistory caps how many async jobs are kept for polling. Past the cap
// the oldest finished jobs are dropped first.
func WithJobHistory(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.jobHistory = size
		}
	}
}
