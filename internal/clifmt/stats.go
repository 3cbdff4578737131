package clifmt

import (
	"fmt"
	"strings"
)

// StatCount is one labelled action count of a sync run.
type StatCount struct {
	Label string
	Count int
}

// StatsLine renders a per-file sync summary, skipping zero counts:
//
//	notes.norg: pulled-completed 2, pushed-new 1
func StatsLine(file string, counts []StatCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", c.Label, c.Count))
	}
	if len(parts) == 0 {
		return ""
	}
	return Success(file) + ": " + strings.Join(parts, ", ")
}
