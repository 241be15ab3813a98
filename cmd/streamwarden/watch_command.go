package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"streamwarden/internal/pausewatch"
	"streamwarden/internal/watchdaemon"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch one paused session until it resolves",
		Long: "Run a single pause watch to resolution: the session resumes, ends, " +
			"or stays paused past the timeout and is terminated. Intended as the " +
			"target of a playback-paused webhook.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			opts := []pausewatch.Option{
				pausewatch.WithDryRun(dryRun),
				pausewatch.WithNotifier(ctx.newNotifier(cfg, logger), cfg.Notifications.DefaultChannel),
				pausewatch.WithMessage(cfg.Pause.Message),
				pausewatch.WithRetryPolicy(ctx.retryPolicy(cfg)),
			}
			if store := ctx.openJournal(cfg, logger); store != nil {
				defer store.Close()
				opts = append(opts, pausewatch.WithJournal(store))
			}

			monitor := pausewatch.NewMonitor(
				ctx.newServerClient(cfg, logger),
				sessionID,
				time.Duration(cfg.Pause.TimeoutSeconds)*time.Second,
				time.Duration(cfg.Pause.PollIntervalSeconds)*time.Second,
				logger,
				opts...,
			)
			resolution, err := monitor.Run(signalCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watch resolved: %s\n", resolution)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session to watch")
	_ = cmd.MarkFlagRequired("session-id")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the resolution without terminating")
	return cmd
}

func newWatchdCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watchd",
		Short: "Run the resident pause-watch daemon",
		Long: "Scan for paused sessions on an interval and host one pause watch per " +
			"session. Only one instance runs per host; a lock file in the state " +
			"directory enforces this.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			var journalStore pausewatch.Journal
			if store := ctx.openJournal(cfg, logger); store != nil {
				defer store.Close()
				journalStore = store
			}

			daemon, err := watchdaemon.New(
				cfg,
				ctx.newServerClient(cfg, logger),
				ctx.newNotifier(cfg, logger),
				journalStore,
				logger,
			)
			if err != nil {
				return err
			}
			if err := daemon.Start(signalCtx); err != nil {
				return err
			}

			<-signalCtx.Done()
			daemon.Stop()
			return nil
		},
	}
}
