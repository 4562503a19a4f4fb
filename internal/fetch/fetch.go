// Package fetch wraps outbound HTTP with per-service rate limiting,
// bounded retries and user-agent rotation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kayz/osprey/internal/config"
	"github.com/kayz/osprey/internal/logger"
)

// TransportError is returned when every attempt for a request failed.
type TransportError struct {
	URL      string
	Attempts int
	Err      error // last underlying cause
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Response is the raw outcome of a fetch. Body is fully read and the
// connection released before Fetch returns.
type Response struct {
	StatusCode int
	Body       string
	FinalURL   string
	Elapsed    time.Duration
}

// Options tune a single Fetch call. Service attributes the call to a rate
// limit bucket; calls with an empty Service share the "default" bucket.
type Options struct {
	Service string
	Header  http.Header
	Body    io.Reader
}

// Client is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	userAgents  []string
	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
	interval    time.Duration

	mu        sync.Mutex
	intervals map[string]time.Duration
	nextSlot  map[string]time.Time
}

func NewClient(cfg config.FetcherConfig) (*Client, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = config.DefaultUserAgents
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		userAgents:  agents,
		maxAttempts: attempts,
		backoffMin:  time.Duration(cfg.BackoffMinMillis) * time.Millisecond,
		backoffMax:  time.Duration(cfg.BackoffMaxMillis) * time.Millisecond,
		interval:    time.Duration(cfg.RateIntervalMilli) * time.Millisecond,
		intervals:   make(map[string]time.Duration),
		nextSlot:    make(map[string]time.Time),
	}, nil
}

// SetServiceInterval overrides the minimum interval between calls
// attributed to one service.
func (c *Client) SetServiceInterval(service string, d time.Duration) {
	c.mu.Lock()
	c.intervals[service] = d
	c.mu.Unlock()
}

// reserve claims the next request slot for the service and returns how long
// the caller must wait before using it. Claiming under the lock keeps the
// per-service interval intact when callers race.
func (c *Client) reserve(service string) time.Duration {
	if service == "" {
		service = "default"
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	interval, ok := c.intervals[service]
	if !ok {
		interval = c.interval
	}

	now := time.Now()
	slot := c.nextSlot[service]
	if slot.Before(now) {
		slot = now
	}
	c.nextSlot[service] = slot.Add(interval)
	return slot.Sub(now)
}

// Fetch performs the request, blocking first on the service's rate limit.
// Transient transport failures are retried up to the configured bound with
// a jittered backoff; a non-2xx status is returned to the caller, not
// retried.
func (c *Client) Fetch(ctx context.Context, method, rawURL string, opts Options) (*Response, error) {
	if wait := c.reserve(opts.Service); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.jitter()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, opts.Body)
		if err != nil {
			return nil, err
		}
		for k, vs := range opts.Header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		// Rotate identity on every attempt.
		req.Header.Set("User-Agent", c.userAgents[rand.Intn(len(c.userAgents))])
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logger.Debugf("%s: %s %s attempt %d failed: %v", opts.Service, method, rawURL, attempt+1, err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		elapsed := time.Since(start)
		logger.Infof("%s: %s %s -> %d (%.2fs)", opts.Service, method, rawURL, resp.StatusCode, elapsed.Seconds())

		finalURL := rawURL
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}
		return &Response{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			FinalURL:   finalURL,
			Elapsed:    elapsed,
		}, nil
	}

	logger.Errorf("%s: %s %s failed: %v", opts.Service, method, rawURL, lastErr)
	return nil, &TransportError{URL: rawURL, Attempts: c.maxAttempts, Err: lastErr}
}

// Get is shorthand for Fetch with GET and no body.
func (c *Client) Get(ctx context.Context, rawURL string, service string) (*Response, error) {
	return c.Fetch(ctx, http.MethodGet, rawURL, Options{Service: service})
}

func (c *Client) jitter() time.Duration {
	if c.backoffMax <= c.backoffMin {
		return c.backoffMin
	}
	return c.backoffMin + time.Duration(rand.Int63n(int64(c.backoffMax-c.backoffMin)))
}

// OK reports whether the status code is a 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// BodyContains is a convenience for marker checks against the raw body.
func (r *Response) BodyContains(marker string) bool {
	return strings.Contains(r.Body, marker)
}
