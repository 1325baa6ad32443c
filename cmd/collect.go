package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/transportlab/transport-data-collector/internal/collector"
)

// newCollectCmd creates the 'collect' subcommand, which runs one collection
// pass over every configured source.
func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Runs one data collection pass",
		Long: `Crawls every configured site, extracts and validates article
records, and writes the result as a timestamped CSV file.`,
		RunE: runCollectCommand,
	}
}

func runCollectCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startMetricsListener(cfg.Metrics.Addr)

	summary, err := collector.New(cfg, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("collection run: %w", err)
	}

	if summary.OutputPath != "" {
		logger.Info("output written", zap.String("path", summary.OutputPath))
	}
	return nil
}

// startMetricsListener exposes the Prometheus counters when an address is
// configured. Scheduled runs keep the listener for their whole lifetime.
func startMetricsListener(addr string) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
}
