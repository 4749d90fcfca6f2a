package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "pulse-atlas/1.0 (+collector)"

const (
	retryAttempts = 4
	retryStep     = 1500 * time.Millisecond
)

// newHTTPClient builds the shared client shape: fixed timeout, optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// fetchBody GETs a URL with linear backoff retry: a failed attempt
// waits retryStep * attempt before the next one.
func fetchBody(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		body, err := doGet(ctx, client, rawURL, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryStep * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", retryAttempts, lastErr)
}

func doGet(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
