// Package dedupe tracks event IDs across feed fetches so a sync pass
// ingests each event at most once.
package dedupe

// Option applies a configuration option to the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize sets the maximum number of IDs to keep.
// If maxSize > 0: bounded mode with FIFO eviction.
// If maxSize <= 0: unbounded mode (no eviction).
func WithMaxSize(maxSize int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = maxSize
	}
}
