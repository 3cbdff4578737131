package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obreitwi/neorg-task-sync/norg"
	"github.com/obreitwi/neorg-task-sync/tasks"
)

func TestPerformSync_PullsNewOnlyIntoTarget(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	writeNorg(t, dir, "a.norg", "* TODOs\n  - ( ) Known %#taskid known%\n", old)
	writeNorg(t, dir, "b.norg", "* TODOs\n", old)

	now := time.Now()
	client := newFakeClient(
		tasks.Task{ID: "known", Title: "Known", ModifiedAt: now},
		tasks.Task{ID: "fresh", Title: "Fresh", ModifiedAt: now},
	)

	res, err := PerformSync(context.Background(), client, []string{dir}, Options{
		Tasklist:     "list",
		SectionTodos: "TODOs",
	})
	require.NoError(t, err)

	// Sorted order makes b.norg the last file and therefore the pull target.
	require.Len(t, res.Stats, 2)
	assert.Equal(t, filepath.Join(dir, "a.norg"), res.Stats[0].File)
	assert.Equal(t, filepath.Join(dir, "b.norg"), res.Stats[1].File)
	assert.Equal(t, 0, res.Stats[0].NumPullNew)
	assert.Equal(t, 1, res.Stats[1].NumPullNew)

	docA, err := norg.Open(filepath.Join(dir, "a.norg"), norg.Options{SectionTodos: "TODOs"})
	require.NoError(t, err)
	require.Len(t, docA.Todos, 1)

	docB, err := norg.Open(filepath.Join(dir, "b.norg"), norg.Options{SectionTodos: "TODOs"})
	require.NoError(t, err)
	require.Len(t, docB.Todos, 1)
	assert.Equal(t, "Fresh", docB.Todos[0].Content)
	assert.Equal(t, "fresh", docB.Todos[0].ID)
}

func TestPerformSync_PullToFirst(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	writeNorg(t, dir, "a.norg", "* TODOs\n", old)
	writeNorg(t, dir, "b.norg", "* TODOs\n", old)

	client := newFakeClient(tasks.Task{ID: "fresh", Title: "Fresh", ModifiedAt: time.Now()})

	res, err := PerformSync(context.Background(), client, []string{dir}, Options{
		Tasklist:     "list",
		SectionTodos: "TODOs",
		PullToFirst:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats[0].NumPullNew)
	assert.Equal(t, 0, res.Stats[1].NumPullNew)
}

func TestPerformSync_CreationsVisibleAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	// a.norg pushes a new task; b.norg must not pull it back in, because
	// its id is already represented on a todo seen this run.
	writeNorg(t, dir, "a.norg", "* TODOs\n  - ( ) Pushed from a\n", old)
	writeNorg(t, dir, "b.norg", "* TODOs\n", old)

	client := newFakeClient()

	res, err := PerformSync(context.Background(), client, []string{dir}, Options{
		Tasklist:     "list",
		SectionTodos: "TODOs",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats[0].NumPushNew)
	assert.Equal(t, 0, res.Stats[1].NumPullNew)

	docB, err := norg.Open(filepath.Join(dir, "b.norg"), norg.Options{SectionTodos: "TODOs"})
	require.NoError(t, err)
	assert.Empty(t, docB.Todos)
}

func TestPerformSync_IgnoreListAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	writeNorg(t, dir, "a.norg", "* TODOs\n  - ( ) Task\n", old)
	writeNorg(t, dir, "skip.norg", "* TODOs\n", old)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not norg"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	client := newFakeClient()

	res, err := PerformSync(context.Background(), client, []string{dir}, Options{
		Tasklist:        "list",
		SectionTodos:    "TODOs",
		IgnoreFilenames: []string{"skip.norg"},
	})
	require.NoError(t, err)
	require.Len(t, res.Stats, 1)
	assert.Equal(t, filepath.Join(dir, "a.norg"), res.Stats[0].File)
}

func TestPerformSync_ClearsOldCompletedTasks(t *testing.T) {
	dir := t.TempDir()
	writeNorg(t, dir, "a.norg", "* TODOs\n", time.Now().Add(-time.Hour))

	client := newFakeClient(
		tasks.Task{ID: "old-done", Title: "Old", Completed: true, ModifiedAt: time.Now().AddDate(0, 0, -30)},
		tasks.Task{ID: "new-done", Title: "New", Completed: true, ModifiedAt: time.Now()},
		tasks.Task{ID: "open", Title: "Open", ModifiedAt: time.Now().AddDate(0, 0, -30)},
	)

	res, err := PerformSync(context.Background(), client, []string{dir}, Options{
		Tasklist:           "list",
		SectionTodos:       "TODOs",
		ClearOlderThanDays: 7,
		WithoutPull:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumCleared)
	assert.Equal(t, []string{"old-done"}, client.deleteCalls)
	assert.Contains(t, client.tasks, "new-done")
	assert.Contains(t, client.tasks, "open")
}

func TestPerformSync_EmptyRemoteListIsFine(t *testing.T) {
	dir := t.TempDir()
	writeNorg(t, dir, "a.norg", "* TODOs\n  - ( ) Push me\n", time.Now().Add(-time.Hour))

	client := newFakeClient()

	res, err := PerformSync(context.Background(), client, []string{dir}, Options{
		Tasklist:     "list",
		SectionTodos: "TODOs",
	})
	require.NoError(t, err)
	require.Len(t, res.Stats, 1)
	assert.Equal(t, 1, res.Stats[0].NumPushNew)
	assert.Len(t, client.tasks, 1)
}

func TestPerformSync_NoFiles(t *testing.T) {
	_, err := PerformSync(context.Background(), newFakeClient(), []string{t.TempDir()}, Options{
		Tasklist:     "list",
		SectionTodos: "TODOs",
	})
	require.Error(t, err)
}

func TestPerformSync_ProgressReportsEveryFile(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	writeNorg(t, dir, "a.norg", "* TODOs\n", old)
	writeNorg(t, dir, "b.norg", "* TODOs\n", old)

	var seen []string
	_, err := PerformSync(context.Background(), newFakeClient(), []string{dir}, Options{
		Tasklist:     "list",
		SectionTodos: "TODOs",
		Progress: func(i, n int, file string) {
			seen = append(seen, filepath.Base(file))
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.norg", "b.norg"}, seen)
}
