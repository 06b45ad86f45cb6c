// Package monitor runs the status and roster checks end to end. Collaborators
// are injected so the pipelines can run without a network or a browser.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"corp-monitor/internal/config"
	"corp-monitor/internal/scraper"
	"corp-monitor/internal/status"
)

// StatusPipeline fetches a page and looks for the marker in its text
type StatusPipeline struct {
	Fetcher scraper.Fetcher
	// Now defaults to time.Now
	Now    func() time.Time
	Logger *slog.Logger
}

// Run performs one status check. Fetch failures are reported in Result.Err.
func (p *StatusPipeline) Run(ctx context.Context, cfg config.StatusConfig) status.Result {
	logger := loggerOrDiscard(p.Logger)
	res := status.Result{
		URL:     cfg.URL,
		Subject: cfg.Subject,
		Marker:  cfg.Marker,
	}

	logger.Debug("Fetching status page", "url", cfg.URL)
	page, err := p.Fetcher.Fetch(ctx, cfg.URL)
	res.CheckedAt = nowFunc(p.Now)()
	if err != nil {
		logger.Warn("Status page fetch failed", "url", cfg.URL, "error", err)
		res.Err = err
		return res
	}

	text, err := scraper.ExtractText(page.Body)
	if err != nil {
		res.Err = err
		return res
	}

	res.Found = status.MarkerPresent(text, cfg.Marker)
	logger.Info("Status check complete",
		"url", cfg.URL,
		"status_code", page.StatusCode,
		"marker_found", res.Found)
	return res
}

func nowFunc(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
