package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with passwords redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}

		out, err := cfg.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}
