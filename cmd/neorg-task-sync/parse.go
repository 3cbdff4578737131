package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/obreitwi/neorg-task-sync/internal/clifmt"
	"github.com/obreitwi/neorg-task-sync/norg"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse one norg file and print its todos (debugging aid)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			force, _ := cmd.Flags().GetBool("force-norg")
			if !force && filepath.Ext(file) != ".norg" {
				return fmt.Errorf("%s does not look like a norg file (use --force-norg to parse anyway)", file)
			}

			doc, err := norg.Open(file, norg.Options{
				SectionTodos:       viper.GetString("section_todos"),
				SectionDueEndOfDay: viper.GetString("section_todos_till_end_of_day"),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, clifmt.Headerf("%s: %d todos", file, len(doc.Todos)))
			_, _ = fmt.Fprintln(out, clifmt.Dim(fmt.Sprintf("todo section line: %s, next section line: %s",
				lineNoString(doc.LineNo.TodoSection), lineNoString(doc.LineNo.SectionAfterTodo))))

			for _, todo := range doc.Todos {
				line := fmt.Sprintf("%4d (%c) %s", todo.Line+1, byte(todo.State), todo.Content)
				if todo.ID != "" {
					line += clifmt.Dim(" #" + todo.ID)
				}
				if todo.DueAt != nil {
					line += clifmt.Key(" due " + todo.DueAt.Format("2006-01-02"))
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().Bool("force-norg", false, "Parse files without a .norg extension.")
	return cmd
}

func lineNoString(line int) string {
	if line == norg.LineNone {
		return "none"
	}
	return fmt.Sprintf("%d", line+1)
}
