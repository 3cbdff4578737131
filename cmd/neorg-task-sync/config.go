package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/obreitwi/neorg-task-sync/auth"
	"github.com/obreitwi/neorg-task-sync/internal/cfgpaths"
	"github.com/obreitwi/neorg-task-sync/internal/clifmt"
	"github.com/obreitwi/neorg-task-sync/internal/fsstore"
	"github.com/obreitwi/neorg-task-sync/tasks"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and modify the configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigImportCmd())
	cmd.AddCommand(newConfigTasklistCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(viper.AllSettings())
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, _ = cmd.OutOrStdout().Write(out)
			return nil
		},
	}
}

func newConfigImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import external files into the config directory",
	}

	secretCmd := &cobra.Command{
		Use:   "client-secret",
		Short: "Copy the OAuth client secret JSON into the config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			var raw []byte
			var err error
			if file == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read client secret: %w", err)
			}
			if len(strings.TrimSpace(string(raw))) == 0 {
				return errors.New("client secret input is empty")
			}
			if !json.Valid(raw) {
				return errors.New("client secret is not valid JSON")
			}

			dst, err := cfgpaths.ClientSecretFile()
			if err != nil {
				return err
			}
			if err := fsstore.WriteBytesAtomic(dst, raw, fsstore.FileOptions{}); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), clifmt.Success("Imported client secret to "+dst))
			return nil
		},
	}
	secretCmd.Flags().String("file", "-", "Path of the client secret JSON, or - for stdin.")

	importCmd.AddCommand(secretCmd)
	return importCmd
}

func newConfigTasklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasklist",
		Short: "Manage the remote task list the tool syncs against",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the configured task list id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasklist, err := configuredTasklist()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tasklist)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all remote task lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := auth.Login(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			lists, err := tasks.New(session.HTTPClient(ctx)).TaskLists(ctx)
			if err != nil {
				return err
			}
			rows := make([]clifmt.NameDetailRow, 0, len(lists))
			for _, l := range lists {
				rows = append(rows, clifmt.NameDetailRow{Name: l.ID, Detail: l.Title})
			}
			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:        "Task lists",
				NameHeader:   "ID",
				DetailHeader: "TITLE",
				Rows:         rows,
				EmptyText:    "No task lists found.",
			})
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set VALUE",
		Short: "Select the task list by id or (fuzzy) title and persist it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := auth.Login(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			lists, err := tasks.New(session.HTTPClient(ctx)).TaskLists(ctx)
			if err != nil {
				return err
			}
			selected, err := resolveTasklist(args[0], lists)
			if err != nil {
				return err
			}
			if err := writeConfigValue("tasklist", selected.ID); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(),
				clifmt.Success(fmt.Sprintf("Syncing against %q (%s).", selected.Title, selected.ID)))
			return nil
		},
	})

	return cmd
}

// resolveTasklist matches value against ids first, then exact titles, then
// fuzzily against titles.
func resolveTasklist(value string, lists []tasks.TaskList) (tasks.TaskList, error) {
	for _, l := range lists {
		if l.ID == value {
			return l, nil
		}
	}
	for _, l := range lists {
		if strings.EqualFold(l.Title, value) {
			return l, nil
		}
	}

	titles := make([]string, 0, len(lists))
	for _, l := range lists {
		titles = append(titles, l.Title)
	}
	ranks := fuzzy.RankFindNormalizedFold(value, titles)
	if len(ranks) == 0 {
		return tasks.TaskList{}, fmt.Errorf("no task list matches %q", value)
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return lists[best.OriginalIndex], nil
}

// writeConfigValue read-modify-writes a single key in config.yaml without
// dumping the whole resolved viper state into the file.
func writeConfigValue(key string, value any) error {
	path, err := cfgpaths.ConfigFile()
	if err != nil {
		return err
	}
	cfg := map[string]any{}
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("parse existing config %s: %w", path, err)
		}
	}
	cfg[key] = value
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if err := fsstore.WriteBytesAtomic(path, out, fsstore.FileOptions{}); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	viper.Set(key, value)
	return nil
}
