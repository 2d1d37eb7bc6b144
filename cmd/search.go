package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/watcher"
)

// newSearchCmd creates the 'search' subcommand, which runs one full sweep:
// gather, filter, export, and notify.
func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Runs one sweep against the PNCP consultation API",
		Long: `Queries the configured sources in priority order, filters the
records by keyword and region, writes the matches to a dated CSV file, and
sends the email notification when credentials are configured.`,

		RunE: runSearchCommand,
	}
	return cmd
}

func runSearchCommand(cmd *cobra.Command, _ []string) error {
	logger, err := buildLogger()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	cfg, err := watcher.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	watcher.New(cfg, logger).Run(cmd.Context())

	logger.Info("search command finished", zap.String("results_dir", cfg.ResultsDir))
	return nil
}
