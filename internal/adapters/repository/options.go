package repository

import (
	"time"

	"github.com/okian/dfspersona/pkg/logger"
)

// Option applies a configuration option to a store.
type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
	log logger.Logger
}

func defaultOptions() storeOptions {
	return storeOptions{
		now: func() time.Time { return time.Now().UTC() },
		log: logger.Get().Named("repository"),
	}
}

// WithClock sets the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *storeOptions) {
		if l != nil {
			o.log = l
		}
	}
}
