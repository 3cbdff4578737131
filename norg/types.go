package norg

import (
	"fmt"
	"log/slog"
	"time"
)

// State is the completion marker of a todo item, stored as the single byte
// between the parentheses of the list item.
type State byte

const (
	StateUndone  State = ' '
	StatePending State = '-'
	StateDone    State = 'x'
)

func (s State) String() string {
	switch s {
	case StateUndone:
		return "undone"
	case StatePending:
		return "pending"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("invalid(%q)", byte(s))
	}
}

func stateFromMarker(b byte) (State, bool) {
	switch State(b) {
	case StateUndone, StatePending, StateDone:
		return State(b), true
	}
	return 0, false
}

// ByteRange is a half-open [Start, End) span of absolute offsets into the
// document buffer. Any buffer mutation invalidates it.
type ByteRange struct {
	Start int
	End   int
}

func (r ByteRange) Len() int { return r.End - r.Start }

// InLineRange is a half-open column span within a single line. It survives
// edits to other lines because structural edits replace whole lines.
type InLineRange struct {
	Start int
	End   int
}

func (r InLineRange) Len() int { return r.End - r.Start }

// TodoBytes locates a todo's spans in the whole buffer.
type TodoBytes struct {
	State     ByteRange
	Content   ByteRange
	IDComment *ByteRange
}

// TodoInLine locates the same spans within the todo's own line.
type TodoInLine struct {
	State     InLineRange
	Content   InLineRange
	IDComment *InLineRange
}

// Todo is one checklist item extracted from a document. ID stays empty
// while the item is not linked to a remote task.
type Todo struct {
	Content string
	ID      string
	Line    int
	State   State
	DueAt   *time.Time
	Bytes   TodoBytes
	InLine  TodoInLine
}

// AppendID returns line with the todo's id attached as a trailing tag
// comment.
func (t Todo) AppendID(line []byte) []byte {
	out := make([]byte, 0, len(line)+len(" %#taskid %")+len(t.ID))
	out = append(out, line...)
	out = append(out, " %#taskid "...)
	out = append(out, t.ID...)
	out = append(out, '%')
	return out
}

// DueAtFmt renders the due date as an RFC 3339 timestamp at midnight UTC,
// or "" when no due date is set.
func (t Todo) DueAtFmt() string {
	if t.DueAt == nil {
		return ""
	}
	d := t.DueAt.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

// LineNone marks the line number of a section that is not present.
const LineNone = -1

// LineNumbers locates the todo region: the configured section heading and
// the nearest heading after it.
type LineNumbers struct {
	TodoSection      int
	SectionAfterTodo int
}

// Options configures parsing. SectionTodos names the heading that opens the
// todo region. SectionDueEndOfDay optionally names a heading whose todos
// receive the file's own date as their due date.
type Options struct {
	SectionTodos       string
	SectionDueEndOfDay string
	Logger             *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
