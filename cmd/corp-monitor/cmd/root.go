// Copyright 2025 Corp Monitor
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"corp-monitor/internal/browser"
	"corp-monitor/internal/config"
	"corp-monitor/internal/scraper"
)

const (
	// Version information
	Version   = "1.0.0"
	BuildDate = "development"
)

var (
	configFile  string
	logLevel    string
	noColor     bool
	failOnError bool
)

// Collaborator constructors, replaced in tests
var (
	newFetcher = func(cfg config.HTTPConfig) scraper.Fetcher {
		return scraper.NewCollyFetcher(cfg)
	}
	newOpener = func(opts browser.Options) browser.Opener {
		return browser.NewOpener(opts)
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "corp-monitor",
	Short: "Scrape-and-compare checks that report only when something is wrong",
	Long: `Corp Monitor v1.0.0

DESCRIPTION:
    Runs one check per invocation and prints a plain-text report to standard
    output only when the check finds something. Empty output means all is well.

    status   fetches a page and reports when the marker text is present
    roster   logs in to two sites and reports names on the shifts roster
             that are missing from the members roster

CONFIGURATION:
    Configuration is read from environment variables, .env / .env.local
    files and an optional corp-monitor.yaml (or --config file):

    Status check:
        STATUS_URL              - Page to check (default: https://habborp.city/corporacao/5)
        STATUS_MARKER           - Text that indicates the inactive state
        STATUS_SUBJECT          - Name used in the report (default: hrprestau)
        HTTP_TIMEOUT            - Request timeout (default: 30s)
        HTTP_USER_AGENT         - User agent for the request

    Roster check (required):
        SHIFTS_LOGIN_URL, SHIFTS_URL, SHIFTS_USERNAME, SHIFTS_PASSWORD
        MEMBERS_LOGIN_URL, MEMBERS_URL, MEMBERS_USERNAME, MEMBERS_PASSWORD

    Roster check (optional):
        SHIFTS_LOGGED_IN_URL    - Wait for this URL after logging in
        SHIFTS_ROW_SELECTOR     - One element per roster row (default: table tbody tr)
        SHIFTS_NAME_SELECTOR    - Name inside a row (default: td:nth-child(1))
        SHIFTS_ATTRIBUTE_SELECTOR - Shift inside a row (default: td:nth-child(2))
        MEMBERS_ITEM_SELECTOR   - One element per member (default: .member)
        MEMBERS_NAME_SELECTOR   - Name inside an item (default: the item text)
        *_USERNAME_SELECTOR, *_PASSWORD_SELECTOR, *_SUBMIT_SELECTOR
        BROWSER_DRIVER          - chromedp or rod (default: chromedp)
        BROWSER_HEADLESS        - Run without a window (default: true)
        BROWSER_TIMEOUT         - Per-operation timeout (default: 15s)
        BROWSER_STEALTH         - Hide automation fingerprints, rod only (default: false)

    LOG_LEVEL                   - debug, info, warn or error (default: info)

EXAMPLES:
    # Status check with the defaults
    corp-monitor status

    # Roster check with credentials in .env, failing the build on scrape errors
    corp-monitor roster --fail-on-error

    # Debug logging to stderr
    corp-monitor roster --log-level=debug`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command with fang and cancels in-flight work on
// SIGINT or SIGTERM. This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fang.Execute(ctx, rootCmd)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./corp-monitor.yaml or ./config/corp-monitor.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero when a page or roster could not be fetched")

	rootCmd.AddCommand(statusCmd, rosterCmd, configCmd)
}

// loadConfiguration loads .env files, the config file and the environment,
// then builds the logger at the configured level
func loadConfiguration(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if _, err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if flag := cmd.Flag("log-level"); flag != nil && flag.Changed {
		v.Set("log_level", flag.Value.String())
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	logger.Debug("Starting corp-monitor",
		"version", Version,
		"build_date", BuildDate,
		"command", cmd.Name())
	if configJSON, err := cfg.ToJSON(); err == nil {
		logger.Debug("Configuration details", "config", configJSON)
	}

	return cfg, logger, nil
}
