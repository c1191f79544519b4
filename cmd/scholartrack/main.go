package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scholartrack/internal/app"
	"scholartrack/internal/config"
	"scholartrack/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scholartrack",
		Short:         "Tracks research activity of a roster against OpenAlex",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "daily",
			Short: "Run one snapshot-diff pass and append non-zero deltas",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
					return a.RunDaily(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "monthly",
			Short: "Build country rollups, executive summaries and the roster archive",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
					return a.RunMonthly(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Stay resident: daily job every 24h, monthly job on the 1st",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return withApp(ctx, func(ctx context.Context, a *app.Application) error {
					return a.RunScheduled(ctx)
				})
			},
		},
	)

	return root
}

func withApp(ctx context.Context, fn func(context.Context, *app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer func() { _ = application.Close() }()

	if err := fn(ctx, application); err != nil {
		logger.Error("run failed", "error", err)
		return err
	}
	return nil
}
