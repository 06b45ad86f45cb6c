package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corp-monitor/internal/config"
)

func TestCollyFetcher_Success(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><h1>Corporação</h1></body></html>"))
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(config.HTTPConfig{UserAgent: "corp-monitor-test", Timeout: 5 * time.Second})
	page, err := fetcher.Fetch(context.Background(), server.URL+"/corporacao/5")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, server.URL+"/corporacao/5", page.URL)
	assert.Contains(t, string(page.Body), "Corporação")
	assert.Equal(t, "corp-monitor-test", gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestCollyFetcher_HTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("Usuário não cadastrado"))
			}))
			defer server.Close()

			fetcher := NewCollyFetcher(config.HTTPConfig{Timeout: 5 * time.Second})
			page, err := fetcher.Fetch(context.Background(), server.URL)
			require.Error(t, err)
			assert.Nil(t, page)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, tt.status, fetchErr.StatusCode)
			assert.Equal(t, server.URL, fetchErr.URL)
			assert.Contains(t, err.Error(), http.StatusText(tt.status))
		})
	}
}

func TestCollyFetcher_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewCollyFetcher(config.HTTPConfig{Timeout: 2 * time.Second})
	_, err := fetcher.Fetch(context.Background(), url)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.NotNil(t, fetchErr.Unwrap())
}

func TestCollyFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewCollyFetcher(config.HTTPConfig{Timeout: 200 * time.Millisecond})

	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestCollyFetcher_CancelledContext(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewCollyFetcher(config.HTTPConfig{Timeout: time.Second})
	_, err := fetcher.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestNewCollyFetcher_DefaultTimeout(t *testing.T) {
	fetcher := NewCollyFetcher(config.HTTPConfig{})
	assert.Equal(t, 30*time.Second, fetcher.timeout)
}

func TestFetchError_Error(t *testing.T) {
	withStatus := &FetchError{URL: "https://example.com", StatusCode: 503, Err: errors.New("boom")}
	assert.Equal(t, "fetch https://example.com: HTTP 503 Service Unavailable", withStatus.Error())

	transport := &FetchError{URL: "https://example.com", Err: errors.New("connection refused")}
	assert.Equal(t, "fetch https://example.com: connection refused", transport.Error())
}
