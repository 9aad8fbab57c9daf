// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/okian/sked/internal/adapters/feed"
	"github.com/okian/sked/internal/adapters/taskstore"
	"github.com/okian/sked/internal/domain/agenda"
	"github.com/okian/sked/internal/domain/dedupe"
	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/internal/domain/types"
	"github.com/okian/sked/pkg/logger"
	"github.com/okian/sked/pkg/metrics"
)

// Service implements the API dependencies for the agenda dashboard. It owns
// the official event snapshot, the personal task store, and the classifier
// that turns the merged collection into the daily, weekly, and monthly views.
type Service struct {
	mu sync.RWMutex

	// syncMu serializes sync passes. Startup, cron, and manual triggers may
	// otherwise overlap, and they share the dedupe tracker.
	syncMu sync.Mutex

	// Core components
	store      taskstore.Store
	tracker    dedupe.Tracker
	classifier *agenda.Classifier
	sources    []feed.Source
	scheduler  *cron.Cron

	// Official event snapshot, replaced wholesale by each sync pass.
	official []model.Event

	// Configuration
	location      *time.Location
	lookaheadDays int
	weekStart     time.Weekday
	weeksAhead    int
	dedupeSize    int
	syncSchedule  string
	syncTimeout   time.Duration
	storeBackend  string
	storePath     string

	// State
	started     bool
	startedAt   time.Time
	lastSyncAt  time.Time
	lastSyncErr error
	now         func() time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		location:      time.UTC,
		lookaheadDays: 14,
		weekStart:     time.Sunday,
		weeksAhead:    4,
		dedupeSize:    10_000,
		syncTimeout:   30 * time.Second,
		storeBackend:  "file",
		storePath:     "tasks.json",
		now:           time.Now,
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components, runs the initial feed sync, and
// begins the optional periodic sync schedule. A failing initial sync is not
// fatal: the dashboard starts with whatever tasks are stored locally.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting agenda service...")

	s.classifier = agenda.New(
		agenda.WithLookaheadDays(s.lookaheadDays),
		agenda.WithWeekStart(s.weekStart),
		agenda.WithWeeksAhead(s.weeksAhead),
	)
	s.tracker = dedupe.NewInMemoryTracker(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	// Validate the sync schedule before opening the store, so a bad spec
	// leaves the service fully unstarted and retryable.
	var sched *cron.Cron
	if s.syncSchedule != "" {
		sched = cron.New()
		if _, err := sched.AddFunc(s.syncSchedule, func() {
			if _, err := s.Sync(context.Background()); err != nil {
				s.logger.Warn(context.Background(), "scheduled feed sync failed",
					logger.Error(err),
				)
			}
		}); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("bad sync schedule %q: %w", s.syncSchedule, err)
		}
	}

	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.store = store
	}

	s.started = true
	s.startedAt = s.now()
	s.official = []model.Event{}
	s.mu.Unlock()

	if len(s.sources) > 0 {
		if _, err := s.Sync(ctx); err != nil {
			s.logger.Warn(ctx, "initial feed sync failed, starting with local tasks only",
				logger.Error(err),
			)
		}
	}

	if sched != nil {
		sched.Start()

		s.mu.Lock()
		s.scheduler = sched
		s.mu.Unlock()
	}

	s.logger.Info(ctx, "agenda service started",
		logger.Int("feeds", len(s.sources)),
		logger.String("timezone", s.location.String()),
		logger.String("store", s.storeBackend),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping agenda service...")

	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "agenda service stopped")
}

func (s *Service) openStore(ctx context.Context) (taskstore.Store, error) {
	switch s.storeBackend {
	case "sqlite":
		return taskstore.NewSQLiteStore(ctx, s.storePath)
	default:
		return taskstore.NewFileStore(ctx, s.storePath)
	}
}

// Sync fetches every configured feed and replaces the official event
// snapshot. Feeds that fail are skipped; the pass succeeds as long as at
// least one feed (or zero configured feeds) delivered.
func (s *Service) Sync(ctx context.Context) (types.SyncResult, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	started := s.now()
	ctx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	defer cancel()

	since := s.today()
	s.tracker.Reset(ctx)

	var (
		admitted []model.Event
		fetched  int
		dropped  int
		failed   int
		lastErr  error
	)

	for _, src := range s.sources {
		events, err := src.FetchUpcoming(ctx, since)
		if err != nil {
			failed++
			lastErr = err
			metrics.RecordFeedSyncFailure()
			metrics.RecordErrorByComponent("feed", "fetch")
			s.logger.Warn(ctx, "feed fetch failed",
				logger.String("feed", src.ID()),
				logger.Error(err),
			)
			continue
		}

		fetched += len(events)
		for _, ev := range events {
			if s.tracker.SeenAndRecord(ctx, ev.ID) {
				dropped++
				metrics.RecordFeedEventDropped()
				continue
			}
			admitted = append(admitted, ev)
		}
	}

	result := types.SyncResult{
		Fetched:  fetched,
		Admitted: len(admitted),
		Dropped:  dropped,
		Feeds:    len(s.sources),
		Failed:   failed,
		Duration: s.now().Sub(started).Round(time.Millisecond).String(),
		SyncedAt: started.UTC().Format(time.RFC3339),
	}

	if failed == len(s.sources) && len(s.sources) > 0 {
		// Nothing delivered; keep the previous snapshot.
		s.mu.Lock()
		s.lastSyncErr = lastErr
		s.mu.Unlock()

		result.LastError = lastErr.Error()
		return result, fmt.Errorf("sync: all %d feeds failed: %w", len(s.sources), lastErr)
	}

	if admitted == nil {
		admitted = []model.Event{}
	}

	s.mu.Lock()
	s.official = admitted
	s.lastSyncAt = started
	s.lastSyncErr = lastErr
	s.mu.Unlock()

	if lastErr != nil {
		result.LastError = lastErr.Error()
	}

	metrics.RecordFeedSync()
	metrics.RecordFeedEventsFetched(fetched)
	metrics.RecordFeedSyncDuration(float64(s.now().Sub(started).Milliseconds()))
	metrics.UpdateFeedLastSync(started.Unix())
	metrics.UpdateOfficialEvents(len(admitted))

	s.logger.Info(ctx, "feed sync completed",
		logger.Int("fetched", fetched),
		logger.Int("admitted", len(admitted)),
		logger.Int("dropped", dropped),
		logger.Int("failed_feeds", failed),
	)
	return result, nil
}

// AddTask creates and persists a personal task. An empty date defaults to
// today in the configured timezone.
func (s *Service) AddTask(ctx context.Context, title, date, timeRange string) (model.Event, error) {
	title = strings.TrimSpace(title)

	when := s.today()
	if date != "" {
		parsed, err := model.ParseDate(date)
		if err != nil {
			return model.Event{}, fmt.Errorf("bad task date %q: %w", date, err)
		}
		when = parsed
	}

	task := model.Event{
		ID:        uuid.NewString(),
		Title:     title,
		Date:      when,
		TimeRange: strings.TrimSpace(timeRange),
		Category:  model.CategoryPersonal,
		Origin:    model.OriginPersonal,
	}
	if err := task.Validate(); err != nil {
		return model.Event{}, err
	}

	if err := s.store.Add(ctx, task); err != nil {
		metrics.RecordErrorByComponent("taskstore", "add")
		return model.Event{}, err
	}

	metrics.RecordTaskCreated()
	s.logger.Info(ctx, "task created",
		logger.String("task_id", task.ID),
		logger.String("date", task.Date.String()),
	)
	return task, nil
}

// RemoveTask deletes a personal task by ID.
func (s *Service) RemoveTask(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	metrics.RecordTaskDeleted()
	s.logger.Info(ctx, "task removed", logger.String("task_id", id))
	return nil
}

// Tasks returns every stored personal task.
func (s *Service) Tasks(ctx context.Context) ([]model.Event, error) {
	tasks, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdatePersonalTasks(len(tasks))
	return tasks, nil
}

// Daily returns the three-bucket day view over the merged collection.
func (s *Service) Daily(ctx context.Context) (types.DailyView, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return types.DailyView{}, err
	}

	started := s.now()
	view := s.classifier.Daily(merged, s.today())
	metrics.RecordAgendaQuery("daily")
	metrics.RecordAgendaClassifyLatency(float64(s.now().Sub(started).Microseconds()) / 1000.0)

	return types.DailyView{
		Today:    view.Today,
		Tomorrow: view.Tomorrow,
		Upcoming: view.Upcoming,
	}, nil
}

// Weekly returns the labeled week groups over the merged collection.
func (s *Service) Weekly(ctx context.Context) ([]types.WeekGroup, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}

	started := s.now()
	groups := s.classifier.Weekly(merged, s.today())
	metrics.RecordAgendaQuery("weekly")
	metrics.RecordAgendaClassifyLatency(float64(s.now().Sub(started).Microseconds()) / 1000.0)

	out := make([]types.WeekGroup, len(groups))
	for i, g := range groups {
		out[i] = types.WeekGroup{
			Label:  g.Label,
			Start:  g.Start,
			End:    g.End,
			Events: g.Events,
		}
	}
	return out, nil
}

// Monthly returns the chronological month groups over the merged collection.
func (s *Service) Monthly(ctx context.Context) ([]types.MonthGroup, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}

	started := s.now()
	groups := s.classifier.Monthly(merged)
	metrics.RecordAgendaQuery("monthly")
	metrics.RecordAgendaClassifyLatency(float64(s.now().Sub(started).Microseconds()) / 1000.0)

	out := make([]types.MonthGroup, len(groups))
	for i, g := range groups {
		out[i] = types.MonthGroup{
			Label:  g.Label,
			Year:   g.Year,
			Month:  int(g.Month),
			Events: g.Events,
		}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	official := len(s.official)
	lastSyncAt := s.lastSyncAt
	lastSyncErr := s.lastSyncErr
	startedAt := s.startedAt
	s.mu.RUnlock()

	stats := types.Stats{
		OfficialEvents: official,
		Uptime:         s.now().Sub(startedAt).Round(time.Second).String(),
	}
	if !lastSyncAt.IsZero() {
		stats.LastSyncAt = lastSyncAt.UTC().Format(time.RFC3339)
	}
	if lastSyncErr != nil {
		stats.LastSyncError = lastSyncErr.Error()
	}

	if tasks, err := s.store.Load(ctx); err == nil {
		stats.PersonalTasks = len(tasks)
		metrics.UpdatePersonalTasks(len(tasks))
	}
	metrics.UpdateOfficialEvents(official)

	return stats
}

// merged combines the official snapshot with stored tasks, validated and
// sorted by date.
func (s *Service) merged(ctx context.Context) ([]model.Event, error) {
	tasks, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	official := s.official
	s.mu.RUnlock()

	return agenda.Merge(official, tasks), nil
}

// today resolves the current civil date in the configured timezone.
func (s *Service) today() model.Date {
	return model.DateOf(s.now().In(s.location))
}
