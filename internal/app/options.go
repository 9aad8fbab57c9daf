package service

import (
	"time"

	"github.com/okian/sked/internal/adapters/feed"
	"github.com/okian/sked/internal/adapters/taskstore"
	"github.com/okian/sked/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSources sets the official event feeds to sync from.
func WithSources(sources ...feed.Source) Option {
	return func(s *Service) {
		s.sources = sources
	}
}

// WithStore injects a task store, bypassing backend construction in Start.
func WithStore(store taskstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreBackend selects the task store backend ("file" or "sqlite") and
// its path. Ignored when WithStore injected one directly.
func WithStoreBackend(backend, path string) Option {
	return func(s *Service) {
		if backend != "" {
			s.storeBackend = backend
		}
		if path != "" {
			s.storePath = path
		}
	}
}

// WithLocation sets the timezone used to resolve "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLookaheadDays bounds the daily view's upcoming window.
func WithLookaheadDays(days int) Option {
	return func(s *Service) {
		if days > 1 {
			s.lookaheadDays = days
		}
	}
}

// WithWeekStart sets the first day of the week for the weekly view.
func WithWeekStart(day time.Weekday) Option {
	return func(s *Service) {
		if day >= time.Sunday && day <= time.Saturday {
			s.weekStart = day
		}
	}
}

// WithWeeksAhead sets how many weeks the weekly view scans.
func WithWeeksAhead(weeks int) Option {
	return func(s *Service) {
		if weeks > 0 {
			s.weeksAhead = weeks
		}
	}
}

// WithDedupeSize sets the size of the feed deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSyncSchedule sets a cron expression for periodic feed re-sync.
// Empty disables scheduling.
func WithSyncSchedule(spec string) Option {
	return func(s *Service) {
		s.syncSchedule = spec
	}
}

// WithSyncTimeout bounds a whole sync pass.
func WithSyncTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.syncTimeout = d
		}
	}
}

// WithNow replaces the clock, letting tests pin "today".
func WithNow(now func() time.Time) Option {
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
