package norg

import (
	"regexp"
)

// The tagged pattern must be tried before the plain one: both match a
// tagged line, and the tagged interpretation carries the identity.
var (
	todoTaggedRE = regexp.MustCompile(`^[ \t]*- \(([ x-])\) (.*?) (%#taskid ([^%\s]+)%)[ \t]*$`)
	todoPlainRE  = regexp.MustCompile(`^[ \t]*- \(([ x-])\) (.*?)[ \t]*$`)
	headingRE    = regexp.MustCompile(`^\* (.+?)[ \t]*$`)
)

// scanLines extracts level-1 todos and the title to line mapping of level-1
// headings. At most one todo per line; a later heading with a title already
// seen overwrites the earlier line number.
func scanLines(lines [][]byte) ([]Todo, map[string]int) {
	var todos []Todo
	sections := make(map[string]int)

	offset := 0
	for i, line := range lines {
		if m := todoTaggedRE.FindSubmatchIndex(line); m != nil {
			todos = append(todos, todoFromMatch(line, i, offset, m, true))
		} else if m := todoPlainRE.FindSubmatchIndex(line); m != nil {
			todos = append(todos, todoFromMatch(line, i, offset, m, false))
		} else if m := headingRE.FindSubmatchIndex(line); m != nil {
			sections[string(line[m[2]:m[3]])] = i
		}
		offset += len(line) + 1
	}
	return todos, sections
}

// Submatch index pairs: 1 state marker, 2 content, 3 id comment, 4 id.
func todoFromMatch(line []byte, lineNo, offset int, m []int, tagged bool) Todo {
	state, _ := stateFromMarker(line[m[2]])
	t := Todo{
		Content: string(line[m[4]:m[5]]),
		Line:    lineNo,
		State:   state,
		Bytes: TodoBytes{
			State:   ByteRange{Start: offset + m[2], End: offset + m[3]},
			Content: ByteRange{Start: offset + m[4], End: offset + m[5]},
		},
		InLine: TodoInLine{
			State:   InLineRange{Start: m[2], End: m[3]},
			Content: InLineRange{Start: m[4], End: m[5]},
		},
	}
	if tagged {
		t.ID = string(line[m[8]:m[9]])
		t.Bytes.IDComment = &ByteRange{Start: offset + m[6], End: offset + m[7]}
		t.InLine.IDComment = &InLineRange{Start: m[6], End: m[7]}
	}
	return t
}

func lineNumbersFrom(sections map[string]int, sectionTodos string) LineNumbers {
	ln := LineNumbers{TodoSection: LineNone, SectionAfterTodo: LineNone}
	if sectionTodos == "" {
		return ln
	}
	line, ok := sections[sectionTodos]
	if !ok {
		return ln
	}
	ln.TodoSection = line
	ln.SectionAfterTodo = nextSectionLine(sections, line)
	return ln
}

// nextSectionLine returns the smallest section line strictly after the
// given one, or LineNone.
func nextSectionLine(sections map[string]int, after int) int {
	next := LineNone
	for _, line := range sections {
		if line <= after {
			continue
		}
		if next == LineNone || line < next {
			next = line
		}
	}
	return next
}
