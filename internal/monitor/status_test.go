package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"corp-monitor/internal/config"
	"corp-monitor/internal/scraper"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type fakeFetcher struct {
	pages map[string]string
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*scraper.Page, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	return &scraper.Page{URL: url, StatusCode: 200, Body: []byte(f.pages[url])}, nil
}

func statusConfig() config.StatusConfig {
	return config.StatusConfig{
		URL:     "https://habborp.city/corporacao/5",
		Marker:  "not found",
		Subject: "hrprestau",
		HTTP:    config.HTTPConfig{Timeout: time.Second},
	}
}

func TestStatusPipeline_Run(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		wantFound bool
	}{
		{
			name:      "marker present",
			page:      "<html><body><p>Welcome not found here</p></body></html>",
			wantFound: true,
		},
		{
			name:      "marker absent",
			page:      "<html><body><p>Welcome</p></body></html>",
			wantFound: false,
		},
		{
			name:      "empty page",
			page:      "",
			wantFound: false,
		},
		{
			name:      "marker only inside a script",
			page:      `<html><body><script>var s = "not found";</script><p>Welcome</p></body></html>`,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := statusConfig()
			fetcher := &fakeFetcher{pages: map[string]string{cfg.URL: tt.page}}
			p := &StatusPipeline{Fetcher: fetcher, Now: func() time.Time { return fixedNow }}

			res := p.Run(context.Background(), cfg)
			assert.NoError(t, res.Err)
			assert.Equal(t, tt.wantFound, res.Found)
			assert.Equal(t, !tt.wantFound, res.OK())
			assert.Equal(t, cfg.URL, res.URL)
			assert.Equal(t, "hrprestau", res.Subject)
			assert.Equal(t, "not found", res.Marker)
			assert.Equal(t, fixedNow, res.CheckedAt)
			assert.Equal(t, []string{cfg.URL}, fetcher.calls)
		})
	}
}

func TestStatusPipeline_FetchError(t *testing.T) {
	fetchErr := &scraper.FetchError{URL: "https://habborp.city/corporacao/5", StatusCode: 503, Err: errors.New("unavailable")}
	p := &StatusPipeline{
		Fetcher: &fakeFetcher{err: fetchErr},
		Now:     func() time.Time { return fixedNow },
	}

	res := p.Run(context.Background(), statusConfig())
	assert.ErrorIs(t, res.Err, fetchErr)
	assert.False(t, res.Found)
	assert.False(t, res.OK())
	assert.Equal(t, fixedNow, res.CheckedAt)
}

func TestStatusPipeline_DefaultClock(t *testing.T) {
	cfg := statusConfig()
	p := &StatusPipeline{Fetcher: &fakeFetcher{pages: map[string]string{}}}

	before := time.Now()
	res := p.Run(context.Background(), cfg)
	assert.False(t, res.CheckedAt.Before(before))
}
