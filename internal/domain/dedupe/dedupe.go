// Package dedupe remembers uploaded CSV bodies so a resubmitted file maps to
// the job that already analyzed it.
package dedupe

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper maps upload digests to job ids.
type Deduper interface {
	// SeenOrRecord returns the job id recorded for digest and true, or
	// records jobID for digest and returns it with false. It is atomic.
	SeenOrRecord(ctx context.Context, digest, jobID string) (string, bool)

	// Forget drops digest so the same body can be submitted again, e.g. after
	// the queue rejected it.
	Forget(ctx context.Context, digest string)

	Size() int
}

// Digest returns the hex SHA-256 of body.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type record struct {
	digest string
	jobID  string
}

// inMemoryDeduper keeps at most maxSize digests and evicts the oldest first.
// maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenOrRecord(_ context.Context, digest, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[digest]; ok {
		return el.Value.(record).jobID, true //nolint:forcetypeassert // only records are stored
	}

	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[digest] = d.order.PushFront(record{digest: digest, jobID: jobID})
	return jobID, false
}

func (d *inMemoryDeduper) Forget(_ context.Context, digest string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[digest]; ok {
		d.order.Remove(el)
		delete(d.seen, digest)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.seen, el.Value.(record).digest) //nolint:forcetypeassert // only records are stored
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
