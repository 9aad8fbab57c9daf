package taskstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/pkg/logger"
	"github.com/okian/sked/pkg/metrics"
)

// SQLiteStore persists tasks in a local SQLite database. The schema is
// created on open so deployments need no separate migration step.
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewSQLiteStore opens (or creates) a SQLite-backed task store.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := options{
		log: logger.Get().Named("taskstore"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db dir: %v", ErrStorage, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %v", ErrStorage, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping db: %v", ErrStorage, err)
	}

	s := &SQLiteStore{db: db, log: o.log}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		time_range TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'personal',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrStorage, err)
	}
	const index = `CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date)`
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrStorage, err)
	}
	return nil
}

// Load returns every stored task ordered by date.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.Event, error) {
	started := time.Now()
	defer func() {
		metrics.RecordTaskStoreLatency(float64(time.Since(started).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, date, time_range, category FROM tasks ORDER BY date, id`)
	if err != nil {
		metrics.RecordTaskStoreError()
		return nil, fmt.Errorf("%w: query tasks: %v", ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []model.Event{}
	for rows.Next() {
		var id, title, date, timeRange, category string
		if err := rows.Scan(&id, &title, &date, &timeRange, &category); err != nil {
			metrics.RecordTaskStoreError()
			return nil, fmt.Errorf("%w: scan task: %v", ErrStorage, err)
		}

		d, derr := model.ParseDate(date)
		if derr != nil {
			// A bad row should not take the whole list down.
			s.log.Warn(ctx, "skipping task with unreadable date",
				logger.String("task_id", id),
				logger.String("date", date),
			)
			continue
		}

		tasks = append(tasks, model.Event{
			ID:        id,
			Title:     title,
			Date:      d,
			TimeRange: timeRange,
			Category:  model.Category(category),
			Origin:    model.OriginPersonal,
		})
	}
	if err := rows.Err(); err != nil {
		metrics.RecordTaskStoreError()
		return nil, fmt.Errorf("%w: iterate tasks: %v", ErrStorage, err)
	}
	return tasks, nil
}

// Add persists a new task.
func (s *SQLiteStore) Add(ctx context.Context, task model.Event) error {
	started := time.Now()
	defer func() {
		metrics.RecordTaskStoreLatency(float64(time.Since(started).Milliseconds()))
	}()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, date, time_range, category) VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Date.String(), task.TimeRange, string(task.Category))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicate, task.ID)
		}
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: insert task: %v", ErrStorage, err)
	}
	return nil
}

// Remove deletes the task with the given ID.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	started := time.Now()
	defer func() {
		metrics.RecordTaskStoreLatency(float64(time.Since(started).Milliseconds()))
	}()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: delete task: %v", ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: delete task: %v", ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Replace swaps the whole task list in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, tasks []model.Event) error {
	started := time.Now()
	defer func() {
		metrics.RecordTaskStoreLatency(float64(time.Since(started).Milliseconds()))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: begin replace: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: clear tasks: %v", ErrStorage, err)
	}
	for _, task := range tasks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, title, date, time_range, category) VALUES (?, ?, ?, ?, ?)`,
			task.ID, task.Title, task.Date.String(), task.TimeRange, string(task.Category)); err != nil {
			metrics.RecordTaskStoreError()
			return fmt.Errorf("%w: insert task %s: %v", ErrStorage, task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: commit replace: %v", ErrStorage, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
