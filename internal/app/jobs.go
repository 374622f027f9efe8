package service

import (
	"container/list"
	"sync"

	"github.com/okian/dfspersona/internal/domain/types"
)

const defaultJobHistory = 10_000

// jobLedger tracks async jobs in submission order. Once it holds more than
// maxSize jobs the oldest finished ones are evicted; queued and processing
// jobs are never evicted. maxSize <= 0 means unbounded.
type jobLedger struct {
	mu      sync.RWMutex
	jobs    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int
}

func newJobLedger(maxSize int) *jobLedger {
	return &jobLedger{
		jobs:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

func (l *jobLedger) get(id string) (types.Job, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	el, ok := l.jobs[id]
	if !ok {
		return types.Job{}, false
	}
	return *el.Value.(*types.Job), true //nolint:forcetypeassert // only jobs are stored
}

func (l *jobLedger) put(j *types.Job) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if el, ok := l.jobs[j.ID]; ok {
		l.order.Remove(el)
	}
	l.jobs[j.ID] = l.order.PushFront(j)
	l.evictFinished()
}

func (l *jobLedger) drop(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if el, ok := l.jobs[id]; ok {
		l.order.Remove(el)
		delete(l.jobs, id)
	}
}

// update applies fn to the job and evicts if fn finished it.
func (l *jobLedger) update(id string, fn func(*types.Job)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if el, ok := l.jobs[id]; ok {
		fn(el.Value.(*types.Job)) //nolint:forcetypeassert // only jobs are stored
		l.evictFinished()
	}
}

func (l *jobLedger) countByState() map[types.JobState]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[types.JobState]int)
	for el := l.order.Front(); el != nil; el = el.Next() {
		out[el.Value.(*types.Job).State]++ //nolint:forcetypeassert // only jobs are stored
	}
	return out
}

func (l *jobLedger) evictFinished() {
	if l.maxSize <= 0 {
		return
	}
	for el := l.order.Back(); el != nil && l.order.Len() > l.maxSize; {
		prev := el.Prev()
		j := el.Value.(*types.Job) //nolint:forcetypeassert // only jobs are stored
		if j.State == types.JobDone || j.State == types.JobFailed {
			l.order.Remove(el)
			delete(l.jobs, j.ID)
		}
		el = prev
	}
}
