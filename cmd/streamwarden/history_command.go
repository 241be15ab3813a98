package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"streamwarden/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var user string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent enforcement journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("the enforcement journal is disabled; enable [journal] in the config")
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []journal.Entry
			if user != "" {
				entries, err = store.RecentForUser(cmd.Context(), user, limit)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No enforcement entries recorded")
				return nil
			}

			headers := []string{"Time", "User", "Rule", "Outcome", "Reason"}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format(time.RFC3339),
					entry.User,
					entry.Rule,
					entry.Outcome,
					entry.Reason,
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")
	cmd.Flags().StringVar(&user, "user", "", "Filter by user")
	return cmd
}
