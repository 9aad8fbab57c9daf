// Package taskstore defines the personal task store interface and errors.
package taskstore

import (
	"context"

	"github.com/okian/sked/internal/domain/model"
)

// Store provides durable storage for personal tasks. Implementations must
// treat a missing or unreadable backing file as an empty task list so the
// dashboard degrades instead of failing.
type Store interface {
	// Load returns every stored task.
	Load(ctx context.Context) ([]model.Event, error)

	// Add persists a new task.
	Add(ctx context.Context, task model.Event) error

	// Remove deletes the task with the given ID.
	// Returns ErrNotFound if no such task exists.
	Remove(ctx context.Context, id string) error

	// Replace swaps the whole task list atomically.
	Replace(ctx context.Context, tasks []model.Event) error

	// Close releases any underlying resources.
	Close() error
}
