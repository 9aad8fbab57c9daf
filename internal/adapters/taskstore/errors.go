package taskstore

import "errors"

// Sentinel kinds for task store errors.
var (
	ErrNotFound  = errors.New("task not found")
	ErrDuplicate = errors.New("task already exists")
	ErrStorage   = errors.New("task storage failed")
)
