package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/obreitwi/neorg-task-sync/norg"
	"github.com/obreitwi/neorg-task-sync/tasks"
)

const norgExt = ".norg"

// Options configures a multi-file sync run.
type Options struct {
	Tasklist           string
	SectionTodos       string
	SectionDueEndOfDay string
	IgnoreFilenames    []string
	ClearOlderThanDays int

	FixMissing    bool
	PullToFirst   bool
	WithoutSort   bool
	WithoutLocal  bool
	WithoutRemote bool
	WithoutPush   bool
	WithoutPull   bool

	Logger   *slog.Logger
	Progress func(i, n int, file string)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// RunResult is the report of one sync run: per-file stats in file order and
// the number of old completed tasks purged at the end.
type RunResult struct {
	Stats      []Stats
	NumCleared int
}

// PerformSync reconciles every resolved file against the remote task list.
// Exactly one file is the pull target for tasks that exist remotely but in
// no document: the last file, or the first under PullToFirst. All other
// files are synced first with pull-new off, threading the evolving remote
// snapshot forward; the pull target then runs with the leftover tasks.
// Processing is strictly sequential (see the identifier-uniqueness and
// shared-snapshot invariants).
func PerformSync(ctx context.Context, client Client, filesOrFolders []string, opts Options) (RunResult, error) {
	files, err := collectFiles(filesOrFolders, opts.IgnoreFilenames)
	if err != nil {
		return RunResult{}, err
	}
	if len(files) == 0 {
		return RunResult{}, errors.New("no norg files to sync")
	}
	if !opts.WithoutSort {
		sort.Strings(files)
	}

	remote, err := client.List(ctx, opts.Tasklist)
	if err != nil {
		if !errors.Is(err, tasks.ErrNoTasks) {
			return RunResult{}, fmt.Errorf("fetch remote tasks: %w", err)
		}
		opts.logger().Debug("remote task list is empty", "tasklist", opts.Tasklist)
		remote = nil
	}

	pullIdx := len(files) - 1
	if opts.PullToFirst {
		pullIdx = 0
	}

	parse := norg.Options{
		SectionTodos:       opts.SectionTodos,
		SectionDueEndOfDay: opts.SectionDueEndOfDay,
		Logger:             opts.Logger,
	}

	base := Syncer{
		Tasklist:      opts.Tasklist,
		PullCompleted: !opts.WithoutLocal,
		PushCompleted: !opts.WithoutRemote,
		PushNew:       !opts.WithoutRemote && !opts.WithoutPush,
		FixMissing:    opts.FixMissing,
		Logger:        opts.Logger,
	}

	seen := make(map[string]bool)
	statsByFile := make(map[string]Stats, len(files))

	for i, file := range files {
		if i == pullIdx {
			continue
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(files), file)
		}
		s := base // pull-new stays off outside the pull target
		res, err := s.Perform(ctx, client, file, remote, parse)
		if err != nil {
			return RunResult{}, err
		}
		remote = res.TasksAfter
		for _, todo := range res.TodosPresent {
			if todo.ID != "" {
				seen[todo.ID] = true
			}
		}
		statsByFile[file] = res.Stats
	}

	// Tasks not represented in any processed document are the pull-new
	// candidates for the target file.
	complement := make([]tasks.Task, 0, len(remote))
	for _, task := range remote {
		if !seen[task.ID] {
			complement = append(complement, task)
		}
	}

	if opts.Progress != nil {
		opts.Progress(pullIdx+1, len(files), files[pullIdx])
	}
	target := base
	target.PullNew = !opts.WithoutLocal && !opts.WithoutPull
	res, err := target.Perform(ctx, client, files[pullIdx], complement, parse)
	if err != nil {
		return RunResult{}, err
	}
	statsByFile[files[pullIdx]] = res.Stats

	// Overlay the pull pass onto the threaded snapshot before housekeeping.
	afterByID := tasksByID(res.TasksAfter)
	final := make([]tasks.Task, 0, len(remote)+len(res.TasksAfter))
	for _, task := range remote {
		if updated, ok := afterByID[task.ID]; ok {
			task = updated
			delete(afterByID, task.ID)
		}
		final = append(final, task)
	}
	for _, task := range res.TasksAfter {
		if _, ok := afterByID[task.ID]; ok {
			final = append(final, task)
		}
	}

	result := RunResult{Stats: make([]Stats, 0, len(files))}
	for _, file := range files {
		result.Stats = append(result.Stats, statsByFile[file])
	}

	if opts.ClearOlderThanDays > 0 {
		cleared, err := clearOldTasks(ctx, client, opts.Tasklist, final, opts.ClearOlderThanDays)
		if err != nil {
			return result, err
		}
		result.NumCleared = cleared
	}
	return result, nil
}

// clearOldTasks deletes every task that is completed and was last modified
// more than retentionDays ago.
func clearOldTasks(ctx context.Context, client Client, tasklist string, snapshot []tasks.Task, retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	n := 0
	for _, task := range snapshot {
		if !task.Completed || !task.ModifiedAt.Before(cutoff) {
			continue
		}
		if err := client.Delete(ctx, tasklist, task.ID); err != nil {
			return n, fmt.Errorf("clear completed task %s: %w", task.ID, err)
		}
		n++
	}
	return n, nil
}

// collectFiles resolves the argument list: directories expand to their
// norg files (non-recursive, ignore list applied by base name), explicit
// files are taken as given.
func collectFiles(filesOrFolders, ignore []string) ([]string, error) {
	var files []string
	for _, arg := range filesOrFolders {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve sync target %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("list folder %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != norgExt {
				continue
			}
			if slices.Contains(ignore, entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	return files, nil
}
