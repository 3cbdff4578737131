package syncer

import (
	"context"

	"github.com/obreitwi/neorg-task-sync/tasks"
)

// Client is the slice of the remote task API the sync engine drives.
// *tasks.Client satisfies it; tests substitute an in-memory fake.
type Client interface {
	List(ctx context.Context, tasklist string) ([]tasks.Task, error)
	Create(ctx context.Context, tasklist, title, due string) (tasks.Task, error)
	Update(ctx context.Context, tasklist, id, title, due string) (tasks.Task, error)
	Complete(ctx context.Context, tasklist, id string) error
	Delete(ctx context.Context, tasklist, id string) error
}
