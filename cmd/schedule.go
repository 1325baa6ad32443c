package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/transportlab/transport-data-collector/internal/collector"
)

// newScheduleCmd creates the 'schedule' subcommand, which runs collection
// passes on a cron expression until interrupted.
func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Runs collection passes on a cron schedule",
		Long: `Starts a long-lived process that executes a full collection pass
whenever the configured cron expression fires (default: daily at 06:00).`,
		RunE: runScheduleCommand,
	}
}

func runScheduleCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startMetricsListener(cfg.Metrics.Addr)

	c := collector.New(cfg, logger)
	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.Schedule.Cron, func() {
		if _, runErr := c.Run(ctx); runErr != nil {
			logger.Error("scheduled run failed", zap.Error(runErr))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cfg.Schedule.Cron, err)
	}

	logger.Info("scheduler started", zap.String("cron", cfg.Schedule.Cron))
	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped")
	return nil
}
