package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"streamwarden/internal/engine"
	"streamwarden/internal/journal"
	"streamwarden/internal/policy"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var ruleNames []string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one enforcement cycle",
		Long: "Fetch the live session snapshot, evaluate the enabled policy rules, " +
			"and terminate violating sessions. A transient fetch failure skips the " +
			"cycle and exits zero; the next scheduled run retries from scratch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			rules, err := policy.Select(policy.FromConfig(cfg), ruleNames)
			if err != nil {
				return err
			}

			opts := []engine.Option{
				engine.WithDryRun(dryRun),
				engine.WithRetryPolicy(ctx.retryPolicy(cfg)),
				engine.WithNotificationChannel(cfg.Notifications.DefaultChannel),
			}
			if history := ctx.newHistorySource(cfg); history != nil {
				opts = append(opts, engine.WithHistory(history))
			}
			if store := ctx.openJournal(cfg, logger); store != nil {
				defer store.Close()
				opts = append(opts, engine.WithJournal(store))
			}

			eng := engine.New(
				ctx.newServerClient(cfg, logger),
				rules,
				ctx.newNotifier(cfg, logger),
				logger,
				opts...,
			)
			result, err := eng.RunCycle(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cycle %s: %d sessions, %d violations\n",
				result.CycleID, result.SessionCount, len(result.Violations))
			for _, action := range result.Actions {
				v := action.Violation
				switch action.Outcome {
				case journal.OutcomeDryRun:
					fmt.Fprintf(out, "  would terminate %s (%s): %s\n", v.SessionID, v.Rule, v.Reason)
				case journal.OutcomeFailed:
					fmt.Fprintf(out, "  failed to terminate %s (%s): %v\n", v.SessionID, v.Rule, action.Err)
				default:
					fmt.Fprintf(out, "  %s %s (%s): %s\n", action.Outcome, v.SessionID, v.Rule, v.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ruleNames, "rule", nil, "Restrict the cycle to the named rules (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be terminated without acting")
	return cmd
}
