// Package fetcher downloads web pages and loads business and campaign data
// from CSV sources.
package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxPageBytes caps how much of a page body is read. Ad-network fingerprints
// sit in the document head or early script tags, so half a megabyte is plenty.
const maxPageBytes = 512 * 1024

// PageOptions configures the page fetcher.
type PageOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSecond throttles outbound fetches. Zero means 5 rps.
	RequestsPerSecond float64
}

// PageFetcher retrieves raw page source over HTTP with retry and rate
// limiting. It returns the unstripped HTML because ad-network fingerprints
// live inside script and meta tags, not in the visible text.
type PageFetcher struct {
	client  *http.Client
	opts    PageOptions
	limiter *rate.Limiter
	breaker *hostBreaker
}

// NewPageFetcher creates a PageFetcher with the given options.
func NewPageFetcher(opts PageOptions) *PageFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; market-intel/1.0)"
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &PageFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(rps), int(math.Ceil(rps))),
		breaker: newHostBreaker(0, 0),
	}
}

// Fetch downloads the page at rawURL and returns up to maxPageBytes of its
// body as a string.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	host := hostOf(rawURL)
	if host != "" && !f.breaker.allow(host) {
		return "", eris.Wrapf(ErrHostOpen, "fetcher: %s", host)
	}

	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Debug("page fetch failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL)
			zap.L().Debug("page fetch retryable status",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			_ = resp.Body.Close()
			// The host answered; only connectivity failures trip the breaker.
			f.breaker.onSuccess(host)
			return "", eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		_ = resp.Body.Close()
		if err != nil {
			return "", eris.Wrap(err, "fetcher: read body")
		}
		f.breaker.onSuccess(host)
		return string(body), nil
	}

	if host != "" {
		f.breaker.onFailure(host)
	}
	return "", eris.Wrap(lastErr, "fetcher: all retries exhausted")
}

func (f *PageFetcher) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d) / 2))
	d = d + jitter

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
