package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// chromedpSession drives one Chrome tab through the DevTools protocol
type chromedpSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
	closeOnce   sync.Once
	closeErr    error
}

// ValidateChromeAvailable checks if Chrome/Chromium is available and working
func ValidateChromeAvailable() error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	testCtx, testCancel := context.WithTimeout(ctx, 10*time.Second)
	defer testCancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		return fmt.Errorf("Chrome/Chromium not available or not working: %w", err)
	}
	return nil
}

func openChromedp(ctx context.Context, opts Options) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run allocates the browser; its context must outlive this call
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, &Error{Op: OpOpen, Err: fmt.Errorf("failed to start chrome: %w", err)}
	}

	return &chromedpSession{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		timeout:     opts.Timeout,
	}, nil
}

// allocatorOptions builds Chrome allocator options from the session options
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	out := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if opts.UserAgent != "" {
		out = append(out, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		out = append(out, chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight))
	}
	if opts.NoSandbox {
		out = append(out, chromedp.NoSandbox)
	}
	if opts.Headless {
		out = append(out, chromedp.Headless)
	}
	return out
}

// run executes actions bounded by timeout and by the caller's context
func (s *chromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil && ctx.Err() == nil {
			return fmt.Errorf("%w after %s", ctxErr, timeout)
		}
		return err
	}
	return nil
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.timeout, chromedp.Navigate(url)); err != nil {
		return &Error{Op: OpNavigate, Err: fmt.Errorf("failed to navigate to %s: %w", url, err)}
	}
	return nil
}

func (s *chromedpSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return &Error{Op: OpWait, Selector: selector, Err: err}
	}
	return nil
}

func (s *chromedpSession) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx, s.timeout,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return &Error{Op: OpFill, Selector: selector, Err: err}
	}
	return nil
}

func (s *chromedpSession) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, s.timeout, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return &Error{Op: OpClick, Selector: selector, Err: err}
	}
	return nil
}

func (s *chromedpSession) WaitURL(ctx context.Context, url string, timeout time.Duration) error {
	err := pollURL(ctx, url, timeout, func(ctx context.Context) (string, error) {
		var location string
		err := s.run(ctx, s.timeout, chromedp.Location(&location))
		return location, err
	})
	if err != nil {
		return &Error{Op: OpWaitURL, Err: err}
	}
	return nil
}

func (s *chromedpSession) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", &Error{Op: OpSource, Err: err}
	}
	return html, nil
}

// Close shuts the browser down gracefully and releases the allocator
func (s *chromedpSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancel()
		s.allocCancel()
	})
	return s.closeErr
}
