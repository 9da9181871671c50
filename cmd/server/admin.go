package main

import (
	"context"
	"fmt"

	"github.com/printstudio/internal/draft"
	"github.com/spf13/cobra"
)

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Restore the default admin password",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := bootstrap(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.auth.ResetPassword(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Admin password restored to the default.")
		return nil
	},
}

var sweepDraftsCmd = &cobra.Command{
	Use:   "sweep-drafts",
	Short: "Delete drafts older than DRAFT_TTL once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := bootstrap(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		removed, err := draft.NewSweeper(a.drafts, cfg.DraftTTL).RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d draft(s).\n", removed)
		return nil
	},
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(resetPasswordCmd, sweepDraftsCmd)
}
