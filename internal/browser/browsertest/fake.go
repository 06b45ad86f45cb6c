// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"corp-monitor/internal/browser"
)

// Session is a scripted browser.Session. Pages are served by URL, and a
// click on SubmitSelector moves the location to RedirectTo.
type Session struct {
	// Pages maps a URL to the HTML returned by PageSource
	Pages map[string]string
	// Hidden selectors never become visible; waiting on them times out
	Hidden map[string]bool
	// Errors fails operations, keyed by "op target" or by "op" alone
	Errors map[string]error

	SubmitSelector string
	RedirectTo     string
	CloseErr       error

	mu       sync.Mutex
	location string
	filled   map[string]string
	calls    []string
	closed   int
}

var _ browser.Session = (*Session)(nil)

func (s *Session) record(op, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, op+" "+target)
	if s.closed > 0 {
		return &browser.Error{Op: op, Err: errors.New("session closed")}
	}
	if err, ok := s.Errors[op+" "+target]; ok {
		return err
	}
	if err, ok := s.Errors[op]; ok {
		return err
	}
	return nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &browser.Error{Op: browser.OpNavigate, Err: err}
	}
	if err := s.record(browser.OpNavigate, url); err != nil {
		return err
	}
	s.mu.Lock()
	s.location = url
	s.mu.Unlock()
	return nil
}

func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.record(browser.OpWait, selector); err != nil {
		return err
	}
	if s.Hidden[selector] {
		return &browser.Error{
			Op:       browser.OpWait,
			Selector: selector,
			Err:      fmt.Errorf("%w after %s", context.DeadlineExceeded, timeout),
		}
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if err := s.record(browser.OpFill, selector); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filled == nil {
		s.filled = make(map[string]string)
	}
	s.filled[selector] = value
	return nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.record(browser.OpClick, selector); err != nil {
		return err
	}
	if selector == s.SubmitSelector && s.RedirectTo != "" {
		s.mu.Lock()
		s.location = s.RedirectTo
		s.mu.Unlock()
	}
	return nil
}

func (s *Session) WaitURL(ctx context.Context, url string, timeout time.Duration) error {
	if err := s.record(browser.OpWaitURL, url); err != nil {
		return err
	}
	if s.Location() != url {
		return &browser.Error{
			Op:  browser.OpWaitURL,
			Err: fmt.Errorf("waiting for %s (last location %q): %w", url, s.Location(), context.DeadlineExceeded),
		}
	}
	return nil
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	if err := s.record(browser.OpSource, s.Location()); err != nil {
		return "", err
	}
	html, ok := s.Pages[s.Location()]
	if !ok {
		return "<html><body></body></html>", nil
	}
	return html, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return s.CloseErr
}

// Location is the URL of the last navigation or redirect
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Filled returns the value last typed into selector
func (s *Session) Filled(selector string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filled[selector]
}

// Calls lists the operations performed, in order
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CloseCount reports how many times Close was called
func (s *Session) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Opener hands out sessions in order
type Opener struct {
	Sessions []*Session
	Err      error

	mu     sync.Mutex
	opened int
}

// Open implements browser.Opener
func (o *Opener) Open(ctx context.Context) (browser.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.Err != nil {
		return nil, o.Err
	}
	if o.opened >= len(o.Sessions) {
		return nil, &browser.Error{Op: browser.OpOpen, Err: errors.New("no more sessions")}
	}
	s := o.Sessions[o.opened]
	o.opened++
	return s, nil
}

// Opened reports how many sessions were handed out
func (o *Opener) Opened() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opened
}
