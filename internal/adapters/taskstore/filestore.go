package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/pkg/logger"
	"github.com/okian/sked/pkg/metrics"
)

const defaultFileMode = 0o600

// FileStore persists tasks as a JSON array in a single file. Writes go
// through a temp file and rename so a crash never leaves a half-written
// task list behind.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	mode  os.FileMode
	tasks []model.Event
	log   logger.Logger
}

// NewFileStore opens (or creates) a file-backed task store. A missing or
// corrupt file yields an empty list; corruption is logged, not fatal.
func NewFileStore(ctx context.Context, path string, opts ...Option) (*FileStore, error) {
	o := options{
		fileMode: defaultFileMode,
		log:      logger.Get().Named("taskstore"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &FileStore{
		path: path,
		mode: o.fileMode,
		log:  o.log,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.tasks = []model.Event{}
	case err != nil:
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, path, err)
	default:
		var tasks []model.Event
		if jerr := json.Unmarshal(data, &tasks); jerr != nil {
			s.log.Warn(ctx, "task file is corrupt, starting empty",
				logger.String("path", path),
				logger.Error(jerr),
			)
			tasks = []model.Event{}
		}
		s.tasks = tasks
	}

	return s, nil
}

// Load returns a copy of every stored task.
func (s *FileStore) Load(ctx context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

// Add persists a new task.
func (s *FileStore) Add(ctx context.Context, task model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == task.ID {
			return fmt.Errorf("%w: %s", ErrDuplicate, task.ID)
		}
	}

	next := append(append([]model.Event{}, s.tasks...), task)
	if err := s.persist(next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

// Remove deletes the task with the given ID.
func (s *FileStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Event, 0, len(s.tasks))
	found := false
	for _, t := range s.tasks {
		if t.ID == id {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

// Replace swaps the whole task list atomically.
func (s *FileStore) Replace(ctx context.Context, tasks []model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Event, len(tasks))
	copy(next, tasks)
	if err := s.persist(next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

// persist writes tasks to a sibling temp file and renames it over the
// target. Must be called with s.mu held.
func (s *FileStore) persist(tasks []model.Event) error {
	started := time.Now()
	defer func() {
		metrics.RecordTaskStoreLatency(float64(time.Since(started).Milliseconds()))
	}()

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: encode tasks: %v", ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: temp file in %s: %v", ErrStorage, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: write %s: %v", ErrStorage, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: close %s: %v", ErrStorage, tmpName, err)
	}
	if err := os.Chmod(tmpName, s.mode); err != nil {
		_ = os.Remove(tmpName)
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: chmod %s: %v", ErrStorage, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		metrics.RecordTaskStoreError()
		return fmt.Errorf("%w: rename to %s: %v", ErrStorage, s.path, err)
	}
	return nil
}
