package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obreitwi/neorg-task-sync/auth"
	"github.com/obreitwi/neorg-task-sync/internal/clifmt"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the remote service session",
	}
	cmd.AddCommand(newAuthLoginCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the OAuth consent flow and cache the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := auth.Login(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), clifmt.Success("Logged in, token cached."))
			return nil
		},
	}
}
