// Package cmd defines and implements the CLI commands for the pncp-watcher
// executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/logging"
	"github.com/govdata-br/pncp-watcher/pkg/config"
)

var development bool

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pncp-watcher",
		Short: "Watches the PNCP for relevant procurement notices.",
		Long: `pncp-watcher polls the PNCP public consultation API for procurement
notices, keeps the ones matching the configured keywords and region, exports
them to a dated CSV file, and optionally emails a summary with the file
attached.`,
	}

	cmd.PersistentFlags().BoolVar(&development, "dev", false, "use the development (console) logger")
	cmd.AddCommand(newSearchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// buildLogger constructs the process logger and loads configuration. It is
// shared by all subcommands so each gets a fully initialized environment.
func buildLogger() (*zap.Logger, error) {
	logger, err := logging.New(development)
	if err != nil {
		return nil, err
	}
	config.InitConfig(logger)
	return logger, nil
}
