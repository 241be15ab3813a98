package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"streamwarden/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "Show the live session snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			sessions, err := ctx.newServerClient(cfg, logger).ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No active sessions")
				return nil
			}

			session.SortByStart(sessions)
			headers := []string{"Session", "User", "Title", "State", "Decision", "Bitrate", "Progress", "Address"}
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{
					s.ID,
					s.Username,
					s.DisplayTitle(),
					string(s.State),
					string(s.Decision),
					formatBitrate(s.BitrateKbps),
					strconv.Itoa(int(s.CompletionRatio()*100)) + "%",
					s.IPAddress,
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}
}

func formatBitrate(kbps int) string {
	if kbps <= 0 {
		return "-"
	}
	if kbps >= 1000 {
		return fmt.Sprintf("%.1f Mbps", float64(kbps)/1000)
	}
	return fmt.Sprintf("%d kbps", kbps)
}
