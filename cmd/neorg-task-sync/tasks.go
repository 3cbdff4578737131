package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/obreitwi/neorg-task-sync/auth"
	"github.com/obreitwi/neorg-task-sync/internal/clifmt"
	"github.com/obreitwi/neorg-task-sync/tasks"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List all tasks of the configured task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tasklist, err := configuredTasklist()
			if err != nil {
				return err
			}
			session, err := auth.Login(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			all, err := tasks.New(session.HTTPClient(ctx)).List(ctx, tasklist)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			rows := make([]clifmt.NameDetailRow, 0, len(all))
			for _, t := range all {
				rows = append(rows, clifmt.NameDetailRow{Name: taskGlyph(t), Detail: taskDetail(t)})
			}
			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:        "Tasks",
				NameHeader:   "STATE",
				DetailHeader: "TASK",
				Rows:         rows,
				EmptyText:    "No tasks.",
			})
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print tasks as JSON instead of a table.")
	return cmd
}

func taskGlyph(t tasks.Task) string {
	if t.Completed {
		return "(x)"
	}
	return "( )"
}

func taskDetail(t tasks.Task) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(t.Title))
	if t.DueAt != nil {
		fmt.Fprintf(&b, " (due %s)", t.DueAt.Format(time.DateOnly))
	}
	return b.String()
}
