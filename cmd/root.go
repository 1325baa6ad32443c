// Package cmd defines and implements the CLI commands for the
// transport-collector executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/transportlab/transport-data-collector/internal/config"
	"github.com/transportlab/transport-data-collector/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transport-collector",
		Short: "Collects transport research articles from configured sites.",
		Long: `transport-collector crawls a configured set of transport research
sites, extracts article records from their pages, validates and deduplicates
them, and writes the resulting table as a CSV file.`,
		SilenceUsage: true,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the YAML config file")
	cmd.AddCommand(newCollectCmd())
	cmd.AddCommand(newScheduleCmd())
	return cmd
}

// Execute runs the CLI. It is the only entry point used by main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
