package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// rodSession drives one tab of a browser launched by rod
type rodSession struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	timeout   time.Duration
	closeOnce sync.Once
	closeErr  error
}

func openRod(ctx context.Context, opts Options) (Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox).
		Set("disable-dev-shm-usage")

	controlURL, err := l.Launch()
	if err != nil {
		// Cleanup waits for the process to exit, which never happens when
		// the binary could not be found or started.
		_ = os.RemoveAll(l.Get(flags.UserDataDir))
		return nil, &Error{Op: OpOpen, Err: fmt.Errorf("failed to launch browser: %w", err)}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, &Error{Op: OpOpen, Err: fmt.Errorf("failed to connect to browser: %w", err)}
	}

	s := &rodSession{
		launcher: l,
		browser:  browser,
		timeout:  opts.Timeout,
	}

	if err := s.setupPage(opts); err != nil {
		s.Close()
		return nil, &Error{Op: OpOpen, Err: err}
	}
	return s, nil
}

func (s *rodSession) setupPage(opts Options) error {
	var (
		page *rod.Page
		err  error
	)
	if opts.Stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	s.page = page

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			return fmt.Errorf("failed to set user agent: %w", err)
		}
	}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.ViewportWidth,
			Height:            opts.ViewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to set viewport: %w", err)
		}
	}
	return nil
}

// bounded returns the page bound to the caller's context and timeout.
// The returned cancel func must be called once the operation is done.
func (s *rodSession) bounded(ctx context.Context, timeout time.Duration) (*rod.Page, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return s.page.Context(tctx), cancel
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p, cancel := s.bounded(ctx, s.timeout)
	defer cancel()

	if err := p.Navigate(url); err != nil {
		return &Error{Op: OpNavigate, Err: fmt.Errorf("failed to navigate to %s: %w", url, err)}
	}
	if err := p.WaitLoad(); err != nil {
		return &Error{Op: OpNavigate, Err: fmt.Errorf("failed to load %s: %w", url, err)}
	}
	return nil
}

func (s *rodSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	p, cancel := s.bounded(ctx, timeout)
	defer cancel()

	el, err := p.Element(selector)
	if err == nil {
		err = el.WaitVisible()
	}
	if err != nil {
		return &Error{Op: OpWait, Selector: selector, Err: err}
	}
	return nil
}

func (s *rodSession) Fill(ctx context.Context, selector, value string) error {
	p, cancel := s.bounded(ctx, s.timeout)
	defer cancel()

	el, err := p.Element(selector)
	if err == nil {
		err = el.SelectAllText()
	}
	if err == nil {
		err = el.Input(value)
	}
	if err != nil {
		return &Error{Op: OpFill, Selector: selector, Err: err}
	}
	return nil
}

func (s *rodSession) Click(ctx context.Context, selector string) error {
	p, cancel := s.bounded(ctx, s.timeout)
	defer cancel()

	el, err := p.Element(selector)
	if err == nil {
		err = el.Click(proto.InputMouseButtonLeft, 1)
	}
	if err != nil {
		return &Error{Op: OpClick, Selector: selector, Err: err}
	}
	return nil
}

func (s *rodSession) WaitURL(ctx context.Context, url string, timeout time.Duration) error {
	err := pollURL(ctx, url, timeout, func(ctx context.Context) (string, error) {
		p, cancel := s.bounded(ctx, s.timeout)
		defer cancel()

		info, err := p.Info()
		if err != nil {
			return "", err
		}
		return info.URL, nil
	})
	if err != nil {
		return &Error{Op: OpWaitURL, Err: err}
	}
	return nil
}

func (s *rodSession) PageSource(ctx context.Context) (string, error) {
	p, cancel := s.bounded(ctx, s.timeout)
	defer cancel()

	html, err := p.HTML()
	if err != nil {
		return "", &Error{Op: OpSource, Err: err}
	}
	return html, nil
}

// Close closes the browser and removes the launcher's profile directory
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()
		s.launcher.Kill()
		s.launcher.Cleanup()
	})
	return s.closeErr
}
