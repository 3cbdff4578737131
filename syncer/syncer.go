// Package syncer reconciles todos in norg documents with a remote task
// list: a field-level diff engine, the ordered per-file sync phases and
// the multi-file orchestration on top of them.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/obreitwi/neorg-task-sync/norg"
	"github.com/obreitwi/neorg-task-sync/tasks"
)

// Syncer runs the ordered sync phases for a single document against a
// remote task snapshot. Each phase is toggled independently.
type Syncer struct {
	Tasklist string

	PullCompleted bool
	PullNew       bool
	PushCompleted bool
	PushNew       bool
	FixMissing    bool

	Logger *slog.Logger
}

// Result carries the evolved remote snapshot (creations and updates from
// this pass applied), the todos present in the document after the pass,
// and the action counts.
type Result struct {
	TasksAfter   []tasks.Task
	TodosPresent []norg.Todo
	Stats        Stats
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Perform syncs one file. The document is parsed, mutated through its
// reparse-backed primitives and persisted (backup first) only when some
// phase changed buffer content. Remote calls are issued strictly one at a
// time so the returned snapshot matches the order of local mutations.
func (s *Syncer) Perform(ctx context.Context, client Client, file string, remote []tasks.Task, parse norg.Options) (Result, error) {
	doc, err := norg.Open(file, parse)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", file, err)
	}

	stats := Stats{File: file}
	snapshot := append([]tasks.Task(nil), remote...)
	dirty := false

	if s.PullCompleted {
		n, err := s.pullCompleted(doc, snapshot)
		if err != nil {
			return Result{}, fmt.Errorf("pull completed tasks into %s: %w", file, err)
		}
		stats.NumPullCompleted = n
		dirty = dirty || n > 0
	}

	if s.PullNew {
		n, err := s.pullNew(doc, snapshot)
		if err != nil {
			return Result{}, fmt.Errorf("pull new tasks into %s: %w", file, err)
		}
		stats.NumPullNew = n
		dirty = dirty || n > 0
	}

	if s.PushCompleted {
		n, err := s.pushCompleted(ctx, client, doc, snapshot)
		if err != nil {
			return Result{}, fmt.Errorf("push completed todos from %s: %w", file, err)
		}
		stats.NumPushCompleted = n
	}

	stripped, err := s.handleMissing(doc, snapshot)
	if err != nil {
		return Result{}, fmt.Errorf("handle missing remote tasks in %s: %w", file, err)
	}
	dirty = dirty || stripped

	if s.PushNew {
		n, created, err := s.pushNew(ctx, client, doc)
		if err != nil {
			return Result{}, fmt.Errorf("push new todos from %s: %w", file, err)
		}
		snapshot = append(snapshot, created...)
		stats.NumPushNew = n
		dirty = dirty || n > 0
	}

	snapshot, reconciled, err := s.reconcileFields(ctx, client, doc, snapshot, &stats)
	if err != nil {
		return Result{}, fmt.Errorf("reconcile fields of %s: %w", file, err)
	}
	dirty = dirty || reconciled

	if dirty {
		if err := doc.Backup(); err != nil {
			return Result{}, err
		}
		if err := doc.Write(); err != nil {
			return Result{}, err
		}
	}

	return Result{
		TasksAfter:   snapshot,
		TodosPresent: append([]norg.Todo(nil), doc.Todos...),
		Stats:        stats,
	}, nil
}

// pullCompleted flips the state marker of every tagged, not-yet-done todo
// whose remote task is completed. Single-byte edits, no reparse.
func (s *Syncer) pullCompleted(doc *norg.Document, snapshot []tasks.Task) (int, error) {
	byID := tasksByID(snapshot)
	n := 0
	for i := range doc.Todos {
		todo := doc.Todos[i]
		if todo.ID == "" || todo.State == norg.StateDone {
			continue
		}
		task, ok := byID[todo.ID]
		if !ok || !task.Completed {
			continue
		}
		if err := doc.MarkCompleted(i); err != nil {
			return n, err
		}
		s.logger().Info("pulled completion", "file", doc.Path, "todo", todo.Content)
		n++
	}
	return n, nil
}

// pullNew inserts every uncompleted remote task without a local todo as a
// new undone list line, all at the insertion point in enumeration order.
func (s *Syncer) pullNew(doc *norg.Document, snapshot []tasks.Task) (int, error) {
	present := make(map[string]bool, len(doc.Todos))
	for _, todo := range doc.Todos {
		if todo.ID != "" {
			present[todo.ID] = true
		}
	}

	var incoming []tasks.Task
	for _, task := range snapshot {
		if !task.Completed && !present[task.ID] {
			incoming = append(incoming, task)
		}
	}
	if len(incoming) == 0 {
		return 0, nil
	}

	lines := doc.Lines()
	at := insertionLine(doc, lines)

	inserted := make([][]byte, 0, len(incoming))
	for _, task := range incoming {
		line := []byte("  - ( ) " + strings.TrimSpace(task.Title))
		line = norg.Todo{ID: task.ID}.AppendID(line)
		inserted = append(inserted, line)
		s.logger().Info("pulled new task", "file", doc.Path, "title", task.Title, "id", task.ID)
	}

	merged := make([][]byte, 0, len(lines)+len(inserted))
	merged = append(merged, lines[:at]...)
	merged = append(merged, inserted...)
	merged = append(merged, lines[at:]...)
	if err := doc.SetLines(merged); err != nil {
		return 0, err
	}
	return len(incoming), nil
}

// insertionLine picks where pulled tasks go: after the last todo inside
// the todo region, or right after the heading when the region holds no
// todos. The last todo anywhere in the file is the fallback only for
// documents without a todo-section boundary; a foreign section's todos
// must never attract insertions.
func insertionLine(doc *norg.Document, lines [][]byte) int {
	if doc.LineNo.TodoSection != norg.LineNone {
		last := norg.LineNone
		for _, todo := range doc.Todos {
			if todo.Line <= doc.LineNo.TodoSection {
				continue
			}
			if doc.LineNo.SectionAfterTodo != norg.LineNone && todo.Line >= doc.LineNo.SectionAfterTodo {
				continue
			}
			last = todo.Line
		}
		if last == norg.LineNone {
			last = doc.LineNo.TodoSection
		}
		return last + 1
	}
	if len(doc.Todos) > 0 {
		return doc.Todos[len(doc.Todos)-1].Line + 1
	}
	// End of file, before the trailing empty line of a newline-terminated
	// buffer.
	at := len(lines)
	if at > 0 && len(lines[at-1]) == 0 {
		at--
	}
	return at
}

// pushCompleted completes every remote task whose local todo is done but
// whose remote state is not.
func (s *Syncer) pushCompleted(ctx context.Context, client Client, doc *norg.Document, snapshot []tasks.Task) (int, error) {
	byID := tasksByID(snapshot)
	n := 0
	for _, todo := range doc.Todos {
		if todo.ID == "" || todo.State != norg.StateDone {
			continue
		}
		task, ok := byID[todo.ID]
		if !ok || task.Completed {
			continue
		}
		if err := client.Complete(ctx, s.Tasklist, todo.ID); err != nil {
			return n, err
		}
		markCompleted(snapshot, todo.ID)
		s.logger().Info("pushed completion", "file", doc.Path, "todo", todo.Content)
		n++
	}
	return n, nil
}

// handleMissing deals with tagged, undone todos whose remote task is gone:
// by default they are only warned about; under FixMissing their tags are
// stripped so the push-new phase recreates them as fresh tasks. Returns
// whether the buffer changed.
func (s *Syncer) handleMissing(doc *norg.Document, snapshot []tasks.Task) (bool, error) {
	byID := tasksByID(snapshot)
	var missing []int
	for i, todo := range doc.Todos {
		if todo.ID == "" || todo.State != norg.StateUndone {
			continue
		}
		if _, ok := byID[todo.ID]; ok {
			continue
		}
		if !s.FixMissing {
			s.logger().Warn("todo has no matching remote task",
				"file", doc.Path, "line", todo.Line+1, "todo", todo.Content, "id", todo.ID)
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return false, nil
	}
	s.logger().Info("stripping tags of missing remote tasks", "file", doc.Path, "count", len(missing))
	if err := doc.ClearTags(missing); err != nil {
		return false, err
	}
	return true, nil
}

// pushNew creates a remote task for every undone, untagged todo and tags
// the todo's line with the returned id. Lines are edited in place and the
// document reparsed once at the end.
func (s *Syncer) pushNew(ctx context.Context, client Client, doc *norg.Document) (int, []tasks.Task, error) {
	var created []tasks.Task
	lines := doc.Lines()
	edited := false

	for _, todo := range doc.Todos {
		if todo.ID != "" || todo.State != norg.StateUndone {
			continue
		}
		task, err := client.Create(ctx, s.Tasklist, strings.TrimSpace(todo.Content), todo.DueAtFmt())
		if err != nil {
			return 0, nil, err
		}
		lines[todo.Line] = norg.Todo{ID: task.ID}.AppendID(lines[todo.Line])
		created = append(created, task)
		edited = true
		s.logger().Info("pushed new task", "file", doc.Path, "todo", todo.Content, "id", task.ID)
	}
	if !edited {
		return 0, nil, nil
	}
	if err := doc.SetLines(lines); err != nil {
		return 0, nil, err
	}
	return len(created), created, nil
}

// reconcileFields runs the diff against the post-phase snapshot and
// applies it: newer-local entries become remote update calls, newer-remote
// entries become local title rewrites. Returns the refreshed snapshot and
// whether the buffer changed.
func (s *Syncer) reconcileFields(ctx context.Context, client Client, doc *norg.Document, snapshot []tasks.Task, stats *Stats) ([]tasks.Task, bool, error) {
	diff := ComputeDiff(doc, snapshot)

	for _, todo := range diff.MissingRemote {
		s.logger().Debug("skipping reconciliation of missing remote task",
			"file", doc.Path, "todo", todo.Content, "id", todo.ID)
	}

	for _, id := range sortedKeys(diff.NewerLocal) {
		todo := diff.NewerLocal[id]
		updated, err := client.Update(ctx, s.Tasklist, id, strings.TrimSpace(todo.Content), todo.DueAtFmt())
		if err != nil {
			return snapshot, false, err
		}
		replaceTask(snapshot, updated)
		stats.NumNewerLocal++
	}

	var updates []norg.TitleUpdate
	for _, id := range sortedKeys(diff.NewerRemote) {
		task := diff.NewerRemote[id]
		idx, err := doc.IdxByTodoID(id)
		if err != nil {
			return snapshot, false, err
		}
		updates = append(updates, norg.TitleUpdate{Index: idx, Title: strings.TrimSpace(task.Title)})
		stats.NumNewerRemote++
	}
	if len(updates) == 0 {
		return snapshot, false, nil
	}
	if err := doc.UpdateTaskTitles(updates); err != nil {
		return snapshot, false, err
	}
	return snapshot, true, nil
}

func tasksByID(snapshot []tasks.Task) map[string]tasks.Task {
	byID := make(map[string]tasks.Task, len(snapshot))
	for _, t := range snapshot {
		byID[t.ID] = t
	}
	return byID
}

func markCompleted(snapshot []tasks.Task, id string) {
	for i := range snapshot {
		if snapshot[i].ID == id {
			snapshot[i].Completed = true
			return
		}
	}
}

func replaceTask(snapshot []tasks.Task, task tasks.Task) {
	for i := range snapshot {
		if snapshot[i].ID == task.ID {
			snapshot[i] = task
			return
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
