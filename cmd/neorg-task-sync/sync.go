package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/obreitwi/neorg-task-sync/auth"
	"github.com/obreitwi/neorg-task-sync/internal/clifmt"
	"github.com/obreitwi/neorg-task-sync/syncer"
	"github.com/obreitwi/neorg-task-sync/tasks"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync FILES_OR_FOLDERS...",
		Short: "Reconcile todos in norg files with the remote task list",
		Args:  cobra.MinimumNArgs(1),
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
			client := tasks.New(session.HTTPClient(ctx))

			fixMissing, _ := cmd.Flags().GetBool("fix-missing")
			pullToFirst, _ := cmd.Flags().GetBool("pull-to-first")
			withoutSort, _ := cmd.Flags().GetBool("without-sort")
			withoutLocal, _ := cmd.Flags().GetBool("without-local")
			withoutRemote, _ := cmd.Flags().GetBool("without-remote")
			withoutPush, _ := cmd.Flags().GetBool("without-push")
			withoutPull, _ := cmd.Flags().GetBool("without-pull")

			out := cmd.OutOrStdout()
			opts := syncer.Options{
				Tasklist:           tasklist,
				SectionTodos:       viper.GetString("section_todos"),
				SectionDueEndOfDay: viper.GetString("section_todos_till_end_of_day"),
				IgnoreFilenames:    viper.GetStringSlice("ignore_filenames"),
				ClearOlderThanDays: viper.GetInt("clear_completed_tasks_older_than_days"),
				FixMissing:         fixMissing,
				PullToFirst:        pullToFirst,
				WithoutSort:        withoutSort,
				WithoutLocal:       withoutLocal,
				WithoutRemote:      withoutRemote,
				WithoutPush:        withoutPush,
				WithoutPull:        withoutPull,
				Progress: func(i, n int, file string) {
					_, _ = fmt.Fprintln(out, clifmt.Progressf(i, n, file))
				},
			}

			res, err := syncer.PerformSync(ctx, client, args, opts)
			if err != nil {
				return err
			}

			for _, stats := range res.Stats {
				if !stats.AnyChange() {
					continue
				}
				_, _ = fmt.Fprintln(out, clifmt.StatsLine(stats.File, statCounts(stats)))
			}
			if res.NumCleared > 0 {
				_, _ = fmt.Fprintln(out, clifmt.Dim(fmt.Sprintf("cleared %d old completed tasks", res.NumCleared)))
			}
			return nil
		},
	}

	cmd.Flags().Bool("fix-missing", false, "Strip tags of todos whose remote task vanished and recreate them.")
	cmd.Flags().BoolP("pull-to-first", "f", false, "Pull new remote tasks into the first file instead of the last.")
	cmd.Flags().BoolP("without-sort", "s", false, "Keep the resolved file list unsorted.")
	cmd.Flags().BoolP("without-local", "L", false, "Skip all local modifications (no pulls).")
	cmd.Flags().BoolP("without-remote", "R", false, "Skip all remote modifications (no pushes).")
	cmd.Flags().BoolP("without-push", "r", false, "Skip pushing new todos to the remote list.")
	cmd.Flags().BoolP("without-pull", "l", false, "Skip pulling new remote tasks into the pull target.")

	return cmd
}

func configuredTasklist() (string, error) {
	tasklist := viper.GetString("tasklist")
	if tasklist == "" {
		return "", errors.New("no tasklist configured, run `neorg-task-sync config tasklist set`")
	}
	return tasklist, nil
}

func statCounts(s syncer.Stats) []clifmt.StatCount {
	return []clifmt.StatCount{
		{Label: "pulled-completed", Count: s.NumPullCompleted},
		{Label: "pushed-completed", Count: s.NumPushCompleted},
		{Label: "pulled-new", Count: s.NumPullNew},
		{Label: "pushed-new", Count: s.NumPushNew},
		{Label: "newer-local", Count: s.NumNewerLocal},
		{Label: "newer-remote", Count: s.NumNewerRemote},
	}
}
