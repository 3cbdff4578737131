// Package clifmt renders the tool's terminal output: styled status lines,
// aligned tables and per-file sync summaries. Styling degrades to plain
// text automatically when stdout is not a terminal.
package clifmt

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func Headerf(format string, a ...any) string {
	return headerStyle.Render(fmt.Sprintf(format, a...))
}

func Key(s string) string { return keyStyle.Render(s) }

func Success(s string) string { return successStyle.Render(s) }

func Warn(s string) string { return warnStyle.Render(s) }

func Errorf(format string, a ...any) string {
	return errorStyle.Render(fmt.Sprintf(format, a...))
}

func Dim(s string) string { return dimStyle.Render(s) }

// Progressf renders the per-file progress prefix of a multi-file run.
func Progressf(i, n int, file string) string {
	return Dim(fmt.Sprintf("[%d/%d]", i, n)) + " " + file
}
