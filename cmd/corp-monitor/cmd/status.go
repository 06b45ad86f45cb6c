package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"corp-monitor/internal/monitor"
	"corp-monitor/internal/report"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report when the marker text appears on the status page",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfiguration(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Status.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	pipeline := &monitor.StatusPipeline{
		Fetcher: newFetcher(cfg.Status.HTTP),
		Logger:  logger,
	}
	res := pipeline.Run(cmd.Context(), cfg.Status)

	reporter := report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), noColor)
	if err := reporter.Status(res); err != nil {
		return err
	}

	if failOnError && res.Err != nil {
		return fmt.Errorf("status check failed: %w", res.Err)
	}
	return nil
}
