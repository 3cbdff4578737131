// Package norg parses Neorg outline files into addressable todo records and
// offers reparse-backed mutation primitives for synchronizing them with a
// remote task service.
package norg

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/obreitwi/neorg-task-sync/internal/fsstore"
)

var lineSep = []byte{'\n'}

// Document is one parsed norg file. Todos is ordered by line, ascending.
// All byte ranges point into the current buffer and are replaced on every
// reparse; callers must not hold onto them across mutations.
type Document struct {
	Path       string
	Todos      []Todo
	LineNo     LineNumbers
	ModifiedAt time.Time

	opts    Options
	content []byte
}

// Open reads and parses the file at path.
func Open(path string, opts Options) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read norg file: %w", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat norg file: %w", err)
	}
	doc := &Document{
		Path:       path,
		ModifiedAt: fi.ModTime(),
		opts:       opts,
	}
	if err := doc.Reparse(raw); err != nil {
		return nil, err
	}
	return doc, nil
}

// Content returns the current buffer. Callers must treat it as read-only.
func (d *Document) Content() []byte { return d.content }

// Reparse replaces the buffer and rebuilds todos and section boundaries.
func (d *Document) Reparse(content []byte) error {
	d.content = content
	todos, sections := scanLines(bytes.Split(content, lineSep))
	d.Todos = todos
	d.LineNo = lineNumbersFrom(sections, d.opts.SectionTodos)
	return d.assignDueDates(sections)
}

// Lines splits the buffer on line boundaries. The returned slices alias the
// buffer.
func (d *Document) Lines() [][]byte {
	return bytes.Split(d.content, lineSep)
}

// SetLines reassembles the buffer from lines and reparses.
func (d *Document) SetLines(lines [][]byte) error {
	return d.Reparse(bytes.Join(lines, lineSep))
}

// MarkCompleted flips the state marker of the todo at idx to done with a
// single in-place byte edit. No reparse happens: the buffer length is
// unchanged, so all ranges stay valid.
func (d *Document) MarkCompleted(idx int) error {
	if idx < 0 || idx >= len(d.Todos) {
		return fmt.Errorf("mark completed: todo index %d out of range: %w", idx, ErrNotFound)
	}
	t := &d.Todos[idx]
	span := t.Bytes.State
	if span.Len() != 1 {
		d.opts.logger().Warn("state marker is not a single byte, skipping",
			"file", d.Path, "line", t.Line, "len", span.Len())
		return nil
	}
	if span.Start < 0 || span.End > len(d.content) {
		return &MalformedError{Path: d.Path, Line: t.Line, Reason: "state marker span outside buffer"}
	}
	d.content[span.Start] = byte(StateDone)
	t.State = StateDone
	return nil
}

// ClearTags strips the id comment, including its leading separator, from
// each listed todo's line, then reparses. Todos without an id are logged
// and skipped.
func (d *Document) ClearTags(indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	lines := d.Lines()
	for _, idx := range indices {
		if idx < 0 || idx >= len(d.Todos) {
			return fmt.Errorf("clear tags: todo index %d out of range: %w", idx, ErrNotFound)
		}
		t := d.Todos[idx]
		if t.InLine.IDComment == nil {
			d.opts.logger().Warn("todo carries no id tag, skipping",
				"file", d.Path, "line", t.Line, "content", t.Content)
			continue
		}
		if t.Line < 0 || t.Line >= len(lines) {
			return &MalformedError{Path: d.Path, Line: t.Line, Reason: "todo line outside buffer"}
		}
		line := lines[t.Line]
		start := t.InLine.IDComment.Start - 1
		if start < 0 {
			start = 0
		}
		end := t.InLine.IDComment.End
		if end > len(line) {
			return &MalformedError{Path: d.Path, Line: t.Line, Reason: "id comment span outside line"}
		}
		stripped := make([]byte, 0, len(line)-(end-start))
		stripped = append(stripped, line[:start]...)
		stripped = append(stripped, line[end:]...)
		lines[t.Line] = stripped
	}
	return d.SetLines(lines)
}

// TitleUpdate rewrites the content span of the todo at Index to Title.
type TitleUpdate struct {
	Index int
	Title string
}

// UpdateTaskTitles applies all updates line-locally, then reparses once.
// In-line spans stay valid throughout because every update touches a
// different line.
func (d *Document) UpdateTaskTitles(updates []TitleUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	lines := d.Lines()
	for _, u := range updates {
		if u.Index < 0 || u.Index >= len(d.Todos) {
			return fmt.Errorf("update task titles: todo index %d out of range: %w", u.Index, ErrNotFound)
		}
		t := d.Todos[u.Index]
		if t.Line < 0 || t.Line >= len(lines) {
			return &MalformedError{Path: d.Path, Line: t.Line, Reason: "todo line outside buffer"}
		}
		line := lines[t.Line]
		span := t.InLine.Content
		if span.Start < 0 || span.End > len(line) || span.Start > span.End {
			return &MalformedError{Path: d.Path, Line: t.Line, Reason: "content span outside line"}
		}
		rewritten := make([]byte, 0, len(line)-span.Len()+len(u.Title))
		rewritten = append(rewritten, line[:span.Start]...)
		rewritten = append(rewritten, u.Title...)
		rewritten = append(rewritten, line[span.End:]...)
		lines[t.Line] = rewritten
	}
	return d.SetLines(lines)
}

// IdxByTodoID returns the current index of the todo carrying id.
func (d *Document) IdxByTodoID(id string) (int, error) {
	for i, t := range d.Todos {
		if t.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("todo with id %q: %w", id, ErrNotFound)
}

// BackupPath is the temp-directory location backups of this document go to,
// keyed by the canonicalized source path.
func (d *Document) BackupPath() (string, error) {
	abs, err := filepath.Abs(d.Path)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", d.Path, err)
	}
	name := "neorg_task_sync_" + strings.ReplaceAll(abs, string(filepath.Separator), "%")
	return filepath.Join(os.TempDir(), name), nil
}

// Backup copies the on-disk file, not the in-memory buffer, to the backup
// location.
func (d *Document) Backup() error {
	dst, err := d.BackupPath()
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(d.Path)
	if err != nil {
		return fmt.Errorf("read original for backup: %w", err)
	}
	if err := fsstore.WriteBytesAtomic(dst, raw, fsstore.FileOptions{FilePerm: 0o644}); err != nil {
		return fmt.Errorf("back up %s: %w", d.Path, err)
	}
	return nil
}

// Write persists the buffer to the document's path.
func (d *Document) Write() error {
	if err := fsstore.WriteBytesAtomic(d.Path, d.content, fsstore.FileOptions{FilePerm: 0o644}); err != nil {
		return fmt.Errorf("write %s: %w", d.Path, err)
	}
	return nil
}

// assignDueDates gives every todo between the due-section heading and the
// next heading the file's own date. A missing heading is fine; a heading
// with a filename that does not parse as a date is not.
func (d *Document) assignDueDates(sections map[string]int) error {
	header := d.opts.SectionDueEndOfDay
	if header == "" {
		return nil
	}
	line, ok := sections[header]
	if !ok {
		d.opts.logger().Debug("due date section not present", "file", d.Path, "section", header)
		return nil
	}
	day, err := fileDate(d.Path)
	if err != nil {
		return err
	}
	next := nextSectionLine(sections, line)
	for i := range d.Todos {
		t := &d.Todos[i]
		if t.Line <= line || (next != LineNone && t.Line >= next) {
			continue
		}
		due := day
		t.DueAt = &due
	}
	return nil
}

// fileDate derives the document's own date from its YYYY-MM-DD filename.
func fileDate(path string) (time.Time, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	day, err := time.Parse(time.DateOnly, stem)
	if err != nil {
		return time.Time{}, fmt.Errorf("derive due date from filename %s: %w", base, err)
	}
	return day, nil
}
