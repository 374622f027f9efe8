package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/pkg/metrics"
)

// MemoryStore keeps profiles in a map. Values are copied in and out.
type MemoryStore struct {
	opts storeOptions

	mu       sync.RWMutex
	profiles map[uuid.UUID]model.UserProfile
	closed   bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		opts:     o,
		profiles: make(map[uuid.UUID]model.UserProfile),
	}
}

func (s *MemoryStore) Init(context.Context) error {
	return nil
}

func (s *MemoryStore) Save(_ context.Context, p *model.UserProfile) (err error) {
	defer func(start time.Time) { observe("save", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	var created time.Time
	if old, ok := s.profiles[p.ID]; ok {
		created = old.CreatedAt
	}
	stamp(p, s.opts.now(), created)
	s.profiles[p.ID] = p.Clone()
	metrics.UpdateStoredProfiles(int64(len(s.profiles)))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (p model.UserProfile, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.UserProfile{}, ErrStoreClosed
	}
	stored, ok := s.profiles[id]
	if !ok {
		return model.UserProfile{}, ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) (existed bool, err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrStoreClosed
	}
	_, existed = s.profiles[id]
	delete(s.profiles, id)
	metrics.UpdateStoredProfiles(int64(len(s.profiles)))
	return existed, nil
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return int64(len(s.profiles)), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.profiles = nil
	return nil
}
