package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corp-monitor/internal/config"
)

// pollInterval is how often WaitURL checks the current location
const pollInterval = 200 * time.Millisecond

// Open starts a browser session with the configured driver
func Open(ctx context.Context, opts Options) (Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}

	switch opts.Driver {
	case config.DriverChromedp, "":
		return openChromedp(ctx, opts)
	case config.DriverRod:
		return openRod(ctx, opts)
	default:
		return nil, &Error{Op: OpOpen, Err: fmt.Errorf("unknown browser driver %q", opts.Driver)}
	}
}

// NewOpener returns an Opener that starts sessions with opts
func NewOpener(opts Options) Opener {
	return func(ctx context.Context) (Session, error) {
		return Open(ctx, opts)
	}
}

// WithSession opens a session, runs fn and closes the session on every exit
// path, including a panic in fn. A close failure is joined to fn's error.
func WithSession(ctx context.Context, open Opener, fn func(Session) error) (err error) {
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close browser: %w", closeErr))
		}
	}()

	return fn(s)
}

// LoginForm describes a username/password form
type LoginForm struct {
	URL              string
	LoggedInURL      string
	Username         string
	Password         string
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	// Timeout bounds the waits for the form and for the redirect
	Timeout time.Duration
}

// LoginFormFromConfig builds a LoginForm from the source's login settings
func LoginFormFromConfig(cfg config.LoginConfig, timeout time.Duration) LoginForm {
	return LoginForm{
		URL:              cfg.LoginURL,
		LoggedInURL:      cfg.LoggedInURL,
		Username:         cfg.Username,
		Password:         cfg.Password,
		UsernameSelector: cfg.UsernameSelector,
		PasswordSelector: cfg.PasswordSelector,
		SubmitSelector:   cfg.SubmitSelector,
		Timeout:          timeout,
	}
}

// Login fills and submits form. When LoggedInURL is set it also waits for
// the browser to land there.
func Login(ctx context.Context, s Session, form LoginForm) error {
	if err := s.Navigate(ctx, form.URL); err != nil {
		return err
	}
	if err := s.WaitVisible(ctx, form.UsernameSelector, form.Timeout); err != nil {
		return err
	}
	if err := s.Fill(ctx, form.UsernameSelector, form.Username); err != nil {
		return err
	}
	if err := s.Fill(ctx, form.PasswordSelector, form.Password); err != nil {
		return err
	}
	if err := s.Click(ctx, form.SubmitSelector); err != nil {
		return err
	}
	if form.LoggedInURL == "" {
		return nil
	}
	return s.WaitURL(ctx, form.LoggedInURL, form.Timeout)
}

// pollURL calls current until it reports want or timeout elapses
func pollURL(ctx context.Context, want string, timeout time.Duration, current func(context.Context) (string, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last string
	for {
		location, err := current(ctx)
		if err == nil {
			if sameURL(location, want) {
				return nil
			}
			last = location
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s (last location %q): %w", want, last, ctx.Err())
		case <-ticker.C:
		}
	}
}

// sameURL compares two URLs ignoring a trailing slash
func sameURL(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
