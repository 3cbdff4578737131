package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/obreitwi/neorg-task-sync/internal/fsstore"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate documentation",
	}

	helpMarkdown := &cobra.Command{
		Use:   "help-markdown",
		Short: "Write the full command help as a markdown tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if err := fsstore.EnsureDir(dir, 0o755); err != nil {
				return err
			}
			if err := doc.GenMarkdownTree(cmd.Root(), dir); err != nil {
				return fmt.Errorf("generate markdown help: %w", err)
			}
			return nil
		},
	}
	helpMarkdown.Flags().String("dir", ".", "Output directory for the markdown files.")

	cmd.AddCommand(helpMarkdown)
	return cmd
}
