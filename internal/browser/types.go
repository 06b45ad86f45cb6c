// Package browser drives a real browser for pages that need a login before
// their content can be read.
package browser

import (
	"context"
	"errors"
	"time"

	"corp-monitor/internal/config"
)

// Operation names reported in Error.Op
const (
	OpOpen     = "open"
	OpNavigate = "navigate"
	OpWait     = "wait"
	OpFill     = "fill"
	OpClick    = "click"
	OpWaitURL  = "wait-url"
	OpSource   = "source"
)

// Session is a single browser tab
type Session interface {
	// Navigate loads url and waits for the page to load
	Navigate(ctx context.Context, url string) error
	// WaitVisible waits until selector matches a visible element
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Fill replaces the value of the input matched by selector
	Fill(ctx context.Context, selector, value string) error
	// Click clicks the element matched by selector
	Click(ctx context.Context, selector string) error
	// WaitURL waits until the current location equals url
	WaitURL(ctx context.Context, url string, timeout time.Duration) error
	// PageSource returns the current document's HTML
	PageSource(ctx context.Context) (string, error)
	// Close shuts down the browser
	Close() error
}

// Opener starts a new Session
type Opener func(ctx context.Context) (Session, error)

// Options contains configuration for browser sessions
type Options struct {
	// Driver selects the automation backend (chromedp or rod)
	Driver string
	// Headless controls whether to run browser in headless mode
	Headless bool
	// UserAgent to use for requests
	UserAgent string
	// Timeout bounds every single browser operation
	Timeout time.Duration
	// ViewportWidth sets browser viewport width
	ViewportWidth int
	// ViewportHeight sets browser viewport height
	ViewportHeight int
	// NoSandbox is often needed in containerized environments
	NoSandbox bool
	// Stealth hides common automation fingerprints (rod only)
	Stealth bool
}

// DefaultOptions returns sensible defaults for headless browsing
func DefaultOptions() Options {
	return Options{
		Driver:         config.DriverChromedp,
		Headless:       true,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Timeout:        15 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		NoSandbox:      true,
	}
}

// OptionsFromConfig builds session options from the roster browser settings
func OptionsFromConfig(cfg config.BrowserConfig) Options {
	opts := DefaultOptions()
	if cfg.Driver != "" {
		opts.Driver = cfg.Driver
	}
	opts.Headless = cfg.Headless
	opts.Stealth = cfg.Stealth
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	return opts
}

// Error describes a failed browser operation
type Error struct {
	Op       string
	Selector string
	Err      error
}

func (e *Error) Error() string {
	if e.Selector != "" {
		return "browser " + e.Op + " " + e.Selector + ": " + e.Err.Error()
	}
	return "browser " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the operation ran out of time
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
