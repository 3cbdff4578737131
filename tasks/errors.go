package tasks

import "errors"

var (
	// ErrNotFound marks a remote record that is absent or cannot be
	// addressed.
	ErrNotFound = errors.New("tasks: not found")
	// ErrNoTasks is returned when a task listing comes back without items.
	ErrNoTasks = errors.New("tasks: no tasks")
)
