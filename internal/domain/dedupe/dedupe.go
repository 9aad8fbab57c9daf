// Package dedupe tracks event IDs across feed fetches so a sync pass
// ingests each event at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records event IDs seen while assembling a snapshot. Feeds may
// overlap (the same course exported through two sources) and recurring
// entries can expand to identical occurrences, so the sync loop asks the
// tracker before admitting an event.
type Tracker interface {
	// SeenAndRecord atomically checks whether id was already admitted in
	// this pass and records it if not. Returns true when id is a duplicate.
	SeenAndRecord(ctx context.Context, id string) bool

	// Reset clears all recorded IDs. Called at the start of each sync pass
	// so a fresh snapshot is judged on its own.
	Reset(ctx context.Context)

	Size() int64
}

// inMemoryTracker implements Tracker with a map and FIFO eviction.
// For bounded mode (maxSize > 0) the oldest recorded ID is evicted when
// the cap is reached; for maxSize <= 0 the set grows without limit.
type inMemoryTracker struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, only maintained in bounded mode
	maxSize int
	size    atomic.Int64
}

// NewInMemoryTracker creates a tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		maxSize: 10000,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.seen = make(map[string]struct{})
	if t.maxSize > 0 {
		t.order = make([]string, 0, t.maxSize)
	}

	return t
}

// SeenAndRecord atomically checks whether id was seen and records it if not.
func (t *inMemoryTracker) SeenAndRecord(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.seen[id]; exists {
		return true
	}

	if t.maxSize > 0 {
		if len(t.seen) >= t.maxSize {
			t.evictOldest()
		}
		t.order = append(t.order, id)
	}

	t.seen[id] = struct{}{}
	t.size.Add(1)
	return false
}

// Reset drops every recorded ID.
func (t *inMemoryTracker) Reset(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seen = make(map[string]struct{})
	if t.maxSize > 0 {
		t.order = t.order[:0]
	}
	t.size.Store(0)
}

// evictOldest removes the earliest recorded ID. Must be called with
// t.mu held.
func (t *inMemoryTracker) evictOldest() {
	if len(t.order) == 0 {
		return
	}
	oldest := t.order[0]
	t.order = t.order[1:]
	delete(t.seen, oldest)
	t.size.Add(-1)
}

// Size returns the current number of recorded IDs.
func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
