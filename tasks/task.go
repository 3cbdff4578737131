// Package tasks projects Google Tasks wire objects onto the sync engine's
// task values and talks to the REST API.
package tasks

import (
	"fmt"
	"time"
)

// Task is the engine's view of one remote task. ModifiedAt is the remote
// modification timestamp; DueAt carries a date only significant to the day.
type Task struct {
	ID         string
	Title      string
	Completed  bool
	ModifiedAt time.Time
	DueAt      *time.Time
}

// TaskList identifies one remote task list.
type TaskList struct {
	ID    string
	Title string
}

// apiTask mirrors the Google Tasks v1 wire object. Pointer fields keep
// absent distinguishable from empty.
type apiTask struct {
	ID        *string `json:"id,omitempty"`
	Title     *string `json:"title,omitempty"`
	Status    *string `json:"status,omitempty"`
	Completed *string `json:"completed,omitempty"`
	Updated   *string `json:"updated,omitempty"`
	Due       *string `json:"due,omitempty"`
}

// taskFromAPI projects a wire task. A record without id or title cannot be
// addressed by the sync engine and is rejected. Completion is signalled by
// the presence of the completion timestamp.
func taskFromAPI(raw apiTask) (Task, error) {
	if raw.ID == nil {
		return Task{}, fmt.Errorf("tasks: remote task without id: %w", ErrNotFound)
	}
	if raw.Title == nil {
		return Task{}, fmt.Errorf("tasks: remote task %s without title: %w", *raw.ID, ErrNotFound)
	}
	if raw.Updated == nil {
		return Task{}, fmt.Errorf("tasks: remote task %s without updated timestamp", *raw.ID)
	}
	modified, err := time.Parse(time.RFC3339, *raw.Updated)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: parse updated timestamp of %s: %w", *raw.ID, err)
	}

	task := Task{
		ID:         *raw.ID,
		Title:      *raw.Title,
		Completed:  raw.Completed != nil,
		ModifiedAt: modified,
	}
	if raw.Due != nil {
		// Unparsable due dates are dropped rather than failing the task.
		if due, err := time.Parse(time.RFC3339, *raw.Due); err == nil {
			due = due.UTC()
			task.DueAt = &due
		}
	}
	return task, nil
}
