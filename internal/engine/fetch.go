package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// newFetchClient creates an HTTP client with proper settings for media
// downloads. Used when no Chrome-fingerprint client is configured.
func newFetchClient() *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return &http.Client{
		Timeout: 120 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// FetchMedia downloads a captured media URL over plain HTTP. Hosted
// browser sessions have no usable local download directory, so the
// artifact is fetched directly with the page's cookie header and the
// notebook as referer. Transient statuses are retried with exponential
// backoff; 4xx statuses stop immediately.
func FetchMedia(ctx context.Context, mediaURL, referer, cookieHeader string) ([]byte, error) {
	metrics.FetchRequests.Add(1)

	operation := func() ([]byte, error) {
		data, status, err := fetchMediaOnce(ctx, mediaURL, referer, cookieHeader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if isRetryableStatus(status) {
			return nil, fmt.Errorf("status %d", status)
		}
		if status != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("status %d", status))
		}
		return data, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	data, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(2*time.Minute))
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	return data, nil
}

func fetchMediaOnce(ctx context.Context, mediaURL, referer, cookieHeader string) ([]byte, int, error) {
	headers := ChromeHeaders()
	if referer != "" {
		headers["referer"] = referer
	}
	if cookieHeader != "" {
		headers["cookie"] = cookieHeader
	}

	// Prefer the Chrome-fingerprint client: Google media endpoints are
	// fronted by the same anti-bot stack as the app itself.
	if cfg.BrowserClient != nil {
		return cfg.BrowserClient.Do(http.MethodGet, mediaURL, headers, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := newFetchClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := readResponseBody(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(resp.Body)
}

// isRetryableStatus returns true for HTTP status codes worth retrying.
func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
