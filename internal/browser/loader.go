package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoContext is returned by Load when called without an acquired pool
// context — every page load must hold one of the capped slots.
var ErrNoContext = errors.New("load requires an acquired browser context")

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// maxBodyBytes caps fetched page size; job pages past this are truncated.
	maxBodyBytes = 5 * 1024 * 1024
)

// RawPage is an opaque handle to a loaded document: the final URL after
// redirects plus the raw HTML. Consumed only by the extractor; never persisted.
type RawPage struct {
	URL  string
	HTML []byte
}

// Loader turns a URL into a RawPage within a bounded timeout, consuming one
// acquired pool slot for the duration of the load. Failures surface as
// errors the pipeline catches per URL.
type Loader interface {
	Load(ctx context.Context, slot *Context, url string) (*RawPage, error)
}

// HTTPLoader loads pages over plain HTTP with a shared client.
type HTTPLoader struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPLoader constructs a loader whose per-page budget is timeout.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Load fetches url and returns the page body. Non-2xx statuses are errors so
// blocked or vanished listings get skipped upstream.
func (l *HTTPLoader) Load(ctx context.Context, slot *Context, url string) (*RawPage, error) {
	if slot == nil {
		return nil, ErrNoContext
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s returned %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &RawPage{URL: finalURL, HTML: body}, nil
}
