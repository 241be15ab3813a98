package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var channelID string

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}
			if len(cfg.Notifications.Channels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notification channels configured")
				return nil
			}

			notifier := ctx.newNotifier(cfg, logger)
			out := cmd.OutOrStdout()
			if channelID != "" {
				if err := notifier.Test(cmd.Context(), channelID); err != nil {
					return err
				}
				fmt.Fprintf(out, "Test notification sent to %s\n", channelID)
				return nil
			}
			for _, ch := range cfg.Notifications.Channels {
				if err := notifier.Test(cmd.Context(), ch.ID); err != nil {
					fmt.Fprintf(out, "Channel %s failed: %v\n", ch.ID, err)
					continue
				}
				fmt.Fprintf(out, "Test notification sent to %s\n", ch.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channelID, "channel", "", "Send only to the named channel")
	return cmd
}
