package clifmt

import (
	"bytes"
	"strings"
	"testing"
)

func TestStatsLine_SkipsZeroCounts(t *testing.T) {
	got := StatsLine("notes.norg", []StatCount{
		{Label: "pulled-completed", Count: 2},
		{Label: "pushed-new", Count: 0},
		{Label: "newer-remote", Count: 1},
	})
	if !strings.Contains(got, "notes.norg") {
		t.Fatalf("StatsLine() = %q, want file name", got)
	}
	if !strings.Contains(got, "pulled-completed 2") {
		t.Fatalf("StatsLine() = %q, want pulled-completed count", got)
	}
	if !strings.Contains(got, "newer-remote 1") {
		t.Fatalf("StatsLine() = %q, want newer-remote count", got)
	}
	if strings.Contains(got, "pushed-new") {
		t.Fatalf("StatsLine() = %q, zero count must be skipped", got)
	}
}

func TestStatsLine_AllZero(t *testing.T) {
	got := StatsLine("notes.norg", []StatCount{{Label: "pulled-completed", Count: 0}})
	if got != "" {
		t.Fatalf("StatsLine() = %q, want empty", got)
	}
}

func TestPrintNameDetailTable_Alignment(t *testing.T) {
	var buf bytes.Buffer
	PrintNameDetailTable(&buf, NameDetailTableOptions{
		Title:        "Task lists",
		NameHeader:   "ID",
		DetailHeader: "TITLE",
		Rows: []NameDetailRow{
			{Name: "a", Detail: "Short"},
			{Name: "longer-id", Detail: "Another list"},
		},
	})
	out := buf.String()
	if !strings.Contains(out, "Task lists (2)") {
		t.Fatalf("output missing title header: %q", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Title, header, separator, two rows.
	if len(lines) != 5 {
		t.Fatalf("line count = %d, want 5:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[3], "Short") || !strings.Contains(lines[4], "Another list") {
		t.Fatalf("rows not rendered in order:\n%s", out)
	}
}

func TestPrintNameDetailTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintNameDetailTable(&buf, NameDetailTableOptions{EmptyText: "No task lists."})
	if !strings.Contains(buf.String(), "No task lists.") {
		t.Fatalf("output = %q, want empty text", buf.String())
	}
}

func TestProgressf(t *testing.T) {
	got := Progressf(2, 7, "notes.norg")
	if !strings.Contains(got, "[2/7]") || !strings.Contains(got, "notes.norg") {
		t.Fatalf("Progressf() = %q", got)
	}
}
