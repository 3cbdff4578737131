package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/obreitwi/neorg-task-sync/internal/cfgpaths"
	"github.com/obreitwi/neorg-task-sync/internal/clifmt"
	"github.com/obreitwi/neorg-task-sync/internal/logutil"
)

const envPrefix = "NEORG_TASK_SYNC"

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, clifmt.Errorf("Error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "neorg-task-sync",
		Short:         "Sync todos in norg files with Google Tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	cmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeatable).")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")

	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newTasksCmd())
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	viper.SetDefault("section_todos", "TODOs")
	viper.SetDefault("section_todos_till_end_of_day", "")
	viper.SetDefault("ignore_filenames", []string{})
	viper.SetDefault("clear_completed_tasks_older_than_days", 0)
	viper.SetDefault("logging.format", "text")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile := strings.TrimSpace(viper.GetString("config")); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		}
		return
	}

	// The JSON fallback is merged first so values in config.yaml win.
	if fallback, err := cfgpaths.ConfigFallbackFile(); err == nil {
		viper.SetConfigFile(fallback)
		if err := viper.MergeInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to read fallback config: %v\n", err)
		}
	}
	if cfgFile, err := cfgpaths.ConfigFile(); err == nil {
		viper.SetConfigFile(cfgFile)
		if err := viper.MergeInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		}
	}
}
