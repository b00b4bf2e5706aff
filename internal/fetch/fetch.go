// Package fetch retrieves raw page content for the discovery pipeline.
//
// The HTTP fetcher makes one attempt with a full browser-like header set,
// then retries once with a minimal header set and a shorter timeout.
// Some event sites block obvious bots but accept plain requests; others
// do the reverse, so the two profiles cover both.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Defaults for the HTTP fetcher
const (
	DefaultTimeout = 20 * time.Second
	retryPause     = 500 * time.Millisecond
	maxBodyBytes   = 2 << 20 // 2 MiB is plenty for a listing page
)

// Fetcher retrieves the raw content behind a URL. Implementations own
// their retry and timeout policy; callers treat any error as "this URL
// produced nothing" and move on.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// HTTPFetcher fetches pages over plain HTTP with a browser-like primary
// profile and a minimal fallback profile.
type HTTPFetcher struct {
	primary   *http.Client
	fallback  *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with the given primary timeout. The
// fallback attempt uses half the timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		primary:  &http.Client{Timeout: timeout},
		fallback: &http.Client{Timeout: timeout / 2},
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	}
}

// Fetch retrieves the page at rawURL. The first attempt sends full
// browser headers; on any failure a single retry goes out with minimal
// headers and the shorter fallback timeout.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	var body string
	attempt := 0

	operation := func() error {
		attempt++
		var err error
		if attempt == 1 {
			body, err = f.do(ctx, f.primary, rawURL, true)
		} else {
			body, err = f.do(ctx, f.fallback, rawURL, false)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryPause), 1),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}

	return body, nil
}

// do performs one GET and returns the body text
func (f *HTTPFetcher) do(ctx context.Context, client *http.Client, rawURL string, browserHeaders bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		// A malformed URL will never succeed on retry
		return "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	if browserHeaders {
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Upgrade-Insecure-Requests", "1")
	} else {
		req.Header.Set("User-Agent", "event-scout/1.0 (github.com/pfrederiksen/event-scout)")
		req.Header.Set("Accept", "text/html")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(data), nil
}
