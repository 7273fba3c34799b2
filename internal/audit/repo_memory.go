package audit

import (
	"context"
	"sync"
)

const defaultMemoryLimit = 1000

// MemoryRepo keeps the most recent events in process memory.
// It backs tests and deployments without POSTGRES_HOST; older events fall off once the limit is reached.
type MemoryRepo struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return NewBoundedMemoryRepo(defaultMemoryLimit) }

func NewBoundedMemoryRepo(limit int) *MemoryRepo {
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	return &MemoryRepo{limit: limit}
}

func (r *MemoryRepo) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == r.limit {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy, oldest first.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
