package directory

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"outreach/internal/config"
)

// Fetcher performs rate-limited GETs against a directory host, retrying
// throttled and 5xx responses with exponential backoff.
type Fetcher struct {
	httpClient *http.Client
	limiter    *RateLimiter
	token      string
	userAgent  string
	maxRetries int
}

func NewFetcher(cfg config.Config) *Fetcher {
	retries := cfg.DirectoryMaxRetries
	if retries <= 0 {
		retries = 1
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: time.Duration(cfg.DirectoryTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.DirectoryRateLimitRPS),
		token:      strings.TrimSpace(cfg.DirectoryToken),
		userAgent:  cfg.DirectoryUserAgent,
		maxRetries: retries,
	}
}

// Get returns the decoded response body of rawURL.
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if err := f.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		if f.token != "" {
			req.Header.Set("Authorization", "Bearer "+f.token)
		}
		if f.userAgent != "" {
			req.Header.Set("User-Agent", f.userAgent)
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		req.Header.Set("Accept-Encoding", "br, gzip")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := readBody(resp)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < f.maxRetries {
				lastErr = fmt.Errorf("directory status %d", resp.StatusCode)
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				if err := sleepContext(ctx, backoff); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("directory error: status=%d body=%s", resp.StatusCode, truncate(string(body), 200))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("directory request failed")
	}
	return nil, lastErr
}

func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
