package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"corp-monitor/internal/browser"
	"corp-monitor/internal/monitor"
	"corp-monitor/internal/report"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Report names on the shifts roster that are missing from the members roster",
	Args:  cobra.NoArgs,
	RunE:  runRoster,
}

func runRoster(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfiguration(cmd)
	if err != nil {
		return err
	}
	// Every missing credential is reported before any browser starts
	if err := cfg.Roster.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	opts := browser.OptionsFromConfig(cfg.Roster.Browser)
	logger.Info("Starting roster reconciliation",
		"driver", opts.Driver,
		"headless", opts.Headless,
		"shifts_url", cfg.Roster.Shifts.URL,
		"members_url", cfg.Roster.Members.URL)

	pipeline := &monitor.RosterPipeline{
		Open:   newOpener(opts),
		Logger: logger,
	}
	res := pipeline.Run(cmd.Context(), cfg.Roster)

	reporter := report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), noColor)
	if err := reporter.Roster(res); err != nil {
		return err
	}

	if failOnError && res.Err != nil {
		return fmt.Errorf("roster check failed: %w", res.Err)
	}
	return nil
}
