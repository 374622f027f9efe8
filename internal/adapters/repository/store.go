// Package repository persists analyzed user profiles.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/pkg/metrics"
)

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store provides read/write access to user profiles.
type Store interface {
	// Init prepares the backing storage, e.g. the schema.
	Init(ctx context.Context) error

	// Save upserts p by id. A nil id is replaced by a fresh one, CreatedAt is
	// set on first save and UpdatedAt on every save; p is updated in place.
	Save(ctx context.Context, p *model.UserProfile) error

	// Get returns the profile or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (model.UserProfile, error)

	// Delete removes a profile and reports whether it existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Count returns the number of stored profiles.
	Count(ctx context.Context) (int64, error)

	Close() error
}

// Open returns an initialized store for driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case DriverMemory, "":
		s = NewMemoryStore(opts...)
	case DriverSQLite, DriverPostgres:
		s, err = NewGormStore(driver, dsn, opts...)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	if err := s.Init(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("init %s store: %w", driver, err)
	}
	return s, nil
}

// stamp assigns id and timestamps before a save.
func stamp(p *model.UserProfile, now time.Time, created time.Time) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	switch {
	case !created.IsZero():
		p.CreatedAt = created
	case p.CreatedAt.IsZero():
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

func observe(op string, start time.Time, err error) {
	status := metrics.StoreOK
	switch {
	case errors.Is(err, ErrNotFound):
		status = metrics.StoreNotFound
	case err != nil:
		status = metrics.StoreError
	}
	metrics.RecordStoreOperation(op, status, time.Since(start))
}
