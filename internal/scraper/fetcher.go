// Package scraper fetches pages over plain HTTP and flattens them to text.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"corp-monitor/internal/config"
)

// Page is a fetched document
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a single page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// FetchError is returned when a page could not be retrieved or the server
// answered with an error status. StatusCode is zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CollyFetcher fetches pages with a fresh colly collector per request
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewCollyFetcher creates a fetcher from the HTTP settings
func NewCollyFetcher(cfg config.HTTPConfig) *CollyFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CollyFetcher{
		userAgent: cfg.UserAgent,
		timeout:   timeout,
	}
}

// Fetch performs a GET request and returns the body of a successful response
func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	c := f.newCollector(ctx)

	var (
		page     *Page
		fetchErr *FetchError
	)

	c.OnRequest(func(r *colly.Request) {
		// Mimic a regular browser
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.5")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})

	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = &FetchError{URL: url, Err: err}
		if r != nil {
			fetchErr.StatusCode = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, &FetchError{URL: url, Err: err}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if page == nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("no response received")}
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: page.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	return page, nil
}

func (f *CollyFetcher) newCollector(ctx context.Context) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.IgnoreRobotsTxt(),
	}
	if f.userAgent != "" {
		opts = append(opts, colly.UserAgent(f.userAgent))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.timeout)
	return c
}
