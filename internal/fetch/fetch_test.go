package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kayz/osprey/internal/config"
)

func newTestClient(t *testing.T, cfg config.FetcherConfig) *Client {
	t.Helper()
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = []string{"test-agent/1.0"}
	}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestGetReturnsBodyAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello osprey"))
	}))
	defer srv.Close()

	c := newTestClient(t, config.FetcherConfig{TimeoutSeconds: 5, MaxAttempts: 1})
	resp, err := c.Get(context.Background(), srv.URL, "Test")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK() {
		t.Fatalf("expected 2xx, got %d", resp.StatusCode)
	}
	if !resp.BodyContains("osprey") {
		t.Fatalf("unexpected body: %q", resp.Body)
	}
	if resp.FinalURL != srv.URL {
		t.Fatalf("expected final URL %s, got %s", srv.URL, resp.FinalURL)
	}
}

func TestUserAgentFromPool(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := newTestClient(t, config.FetcherConfig{
		TimeoutSeconds: 5,
		MaxAttempts:    1,
		UserAgents:     []string{"osprey-ua/2.0"},
	})
	if _, err := c.Get(context.Background(), srv.URL, "Test"); err != nil {
		t.Fatal(err)
	}
	if got != "osprey-ua/2.0" {
		t.Fatalf("expected pool user agent, got %q", got)
	}
}

func TestNonSuccessStatusIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, config.FetcherConfig{TimeoutSeconds: 5, MaxAttempts: 3})
	resp, err := c.Get(context.Background(), srv.URL, "Test")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 returned, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 request, got %d", n)
	}
}

func TestTransportFailureRetriesAndWraps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // every attempt now fails to connect

	c := newTestClient(t, config.FetcherConfig{
		TimeoutSeconds:   5,
		MaxAttempts:      2,
		BackoffMinMillis: 1,
		BackoffMaxMillis: 2,
	})
	_, err := c.Get(context.Background(), srv.URL, "Test")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if terr.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", terr.Attempts)
	}
	if terr.Unwrap() == nil {
		t.Fatal("expected a wrapped cause")
	}
}

func TestPerServiceRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newTestClient(t, config.FetcherConfig{TimeoutSeconds: 5, MaxAttempts: 1})
	c.SetServiceInterval("Slow", 120*time.Millisecond)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), srv.URL, "Slow"); err != nil {
				t.Errorf("fetch failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// Three calls share one bucket: the third waits two intervals.
	if elapsed := time.Since(start); elapsed < 240*time.Millisecond {
		t.Fatalf("rate limit not enforced: 3 calls in %v", elapsed)
	}
}

func TestRateLimitBucketsAreIndependent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newTestClient(t, config.FetcherConfig{TimeoutSeconds: 5, MaxAttempts: 1})
	c.SetServiceInterval("A", 500*time.Millisecond)
	c.SetServiceInterval("B", 0)

	if _, err := c.Get(context.Background(), srv.URL, "A"); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if _, err := c.Get(context.Background(), srv.URL, "B"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("service B throttled by service A's bucket: %v", elapsed)
	}
}

func TestFetchHonorsContextWhileWaiting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newTestClient(t, config.FetcherConfig{TimeoutSeconds: 5, MaxAttempts: 1})
	c.SetServiceInterval("Slow", 5*time.Second)

	// First call takes the immediate slot.
	if _, err := c.Get(context.Background(), srv.URL, "Slow"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Get(ctx, srv.URL, "Slow"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
