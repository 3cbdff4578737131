package syncer

import (
	"strings"
	"time"

	"github.com/obreitwi/neorg-task-sync/norg"
	"github.com/obreitwi/neorg-task-sync/tasks"
)

// Diff holds the field-level deltas between one document and a remote task
// snapshot. NewerLocal queues local values to push; NewerRemote queues
// remote values to write into the document. MissingRemote collects tagged,
// uncompleted todos whose task no longer exists remotely; that is an
// anomaly to report or repair, never an error.
type Diff struct {
	NewerLocal    map[string]norg.Todo
	NewerRemote   map[string]tasks.Task
	MissingRemote []norg.Todo
}

// ComputeDiff compares every tagged todo of doc against remote. A title
// conflict is won by the strictly newer side (document mtime vs task
// modification time); ties go to remote. Due dates are only ever pushed,
// and only when the titles already agree.
func ComputeDiff(doc *norg.Document, remote []tasks.Task) Diff {
	d := Diff{
		NewerLocal:  make(map[string]norg.Todo),
		NewerRemote: make(map[string]tasks.Task),
	}

	byID := make(map[string]tasks.Task, len(remote))
	for _, t := range remote {
		byID[t.ID] = t
	}

	for _, todo := range doc.Todos {
		if todo.ID == "" {
			continue
		}
		task, ok := byID[todo.ID]
		if !ok {
			// Completed todos vanish remotely as the service purges
			// them; only an uncompleted one is an anomaly.
			if todo.State != norg.StateDone {
				d.MissingRemote = append(d.MissingRemote, todo)
			}
			continue
		}

		localTitle := strings.TrimSpace(todo.Content)
		remoteTitle := strings.TrimSpace(task.Title)
		if localTitle != remoteTitle {
			if doc.ModifiedAt.After(task.ModifiedAt) {
				d.NewerLocal[todo.ID] = todo
			} else {
				d.NewerRemote[todo.ID] = task
			}
			continue
		}

		if !dueEqual(todo.DueAt, task.DueAt) && doc.ModifiedAt.After(task.ModifiedAt) {
			d.NewerLocal[todo.ID] = todo
		}
	}
	return d
}

// dueEqual compares due dates at day resolution; the remote side only
// keeps the date part.
func dueEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
