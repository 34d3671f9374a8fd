package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func noSleep(c *Client) *Client {
	c.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return c
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{MaxRetries: -2})
	if c.httpClient.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v", c.httpClient.Timeout)
	}
	if c.maxRetries != 0 {
		t.Fatalf("maxRetries = %d, want 0", c.maxRetries)
	}
	tr, ok := c.httpClient.Transport.(*http.Transport)
	if !ok || tr.Proxy == nil {
		t.Fatalf("transport = %#v", c.httpClient.Transport)
	}
}

func TestDoRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		failures   int32
		status     int
		maxRetries int
		wantHits   int32
		wantErr    bool
	}{
		{name: "success first try", failures: 0, maxRetries: 3, wantHits: 1},
		{name: "5xx then success", failures: 2, status: http.StatusBadGateway, maxRetries: 3, wantHits: 3},
		{name: "429 then success", failures: 1, status: http.StatusTooManyRequests, maxRetries: 1, wantHits: 2},
		{name: "exhausted", failures: 10, status: http.StatusServiceUnavailable, maxRetries: 2, wantHits: 3, wantErr: true},
		{name: "no retries", failures: 1, status: http.StatusInternalServerError, maxRetries: 0, wantHits: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&hits, 1) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = io.WriteString(w, "ok")
			}))
			defer srv.Close()

			c := noSleep(NewClient(Config{MaxRetries: tt.maxRetries}))
			resp, err := c.Get(context.Background(), srv.URL, nil)
			if tt.wantErr {
				var se *StatusError
				if !errors.As(err, &se) || se.Status != tt.status {
					t.Fatalf("error = %v, want StatusError %d", err, tt.status)
				}
			} else {
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				resp.Body.Close()
			}
			if got := atomic.LoadInt32(&hits); got != tt.wantHits {
				t.Fatalf("hits = %d, want %d", got, tt.wantHits)
			}
		})
	}
}

func TestDoReplaysBodyAndHeaders(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != `[{"a":1}]` {
			t.Errorf("body = %q", b)
		}
		if r.Header.Get("apikey") != "k" || r.Header.Get("Prefer") != "return=minimal" {
			t.Errorf("headers = %v", r.Header)
		}
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := noSleep(NewClient(Config{MaxRetries: 1, BaseHeaders: http.Header{"Apikey": {"k"}, "Prefer": {"x"}}}))
	resp, err := c.Post(context.Background(), srv.URL, []byte(`[{"a":1}]`), http.Header{"Prefer": {"return=minimal"}})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("status = %d hits = %d", resp.StatusCode, hits)
	}
}

func TestDoNonRetryableReturnsResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := noSleep(NewClient(Config{MaxRetries: 3}))
	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_, err = CheckStatus(resp)
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadRequest || !strings.Contains(string(se.Body), "bad") {
		t.Fatalf("CheckStatus() error = %v", err)
	}
	if se.Method != http.MethodGet {
		t.Fatalf("method = %q", se.Method)
	}
}

func TestDoValidatesArguments(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	if _, err := c.Do(context.Background(), "", "http://x", nil, nil); err == nil {
		t.Fatal("empty method: error = nil")
	}
	if _, err := c.Do(context.Background(), http.MethodGet, "", nil, nil); err == nil {
		t.Fatal("empty url: error = nil")
	}
}

func TestDoHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(Config{})
	if _, err := c.Get(ctx, "http://127.0.0.1:1", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	initial, limit := 100*time.Millisecond, time.Second
	tests := map[int]time.Duration{
		-1: 100 * time.Millisecond,
		0:  100 * time.Millisecond,
		1:  200 * time.Millisecond,
		3:  800 * time.Millisecond,
		4:  time.Second,
		63: time.Second,
	}
	for attempt, want := range tests {
		if got := backoffDuration(initial, attempt, limit); got != want {
			t.Errorf("backoffDuration(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	if d, ok := retryAfter("2"); !ok || d != 2*time.Second {
		t.Fatalf("retryAfter(2) = %v, %v", d, ok)
	}
	for _, v := range []string{"", "-1", "Wed, 21 Oct 2015 07:28:00 GMT"} {
		if _, ok := retryAfter(v); ok {
			t.Errorf("retryAfter(%q) ok = true", v)
		}
	}
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("error = %v", err)
	}
}

func TestSourceOpen(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "a,b\n1,2\n")
	}))
	defer srv.Close()

	c := noSleep(NewClient(Config{}))
	rc, err := (&Source{Client: c, URL: srv.URL + "/raw.csv"}).Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "a,b\n1,2\n" {
		t.Fatalf("body = %q", b)
	}

	_, err = (&Source{Client: c, URL: srv.URL + "/missing.csv"}).Open(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound {
		t.Fatalf("missing: error = %v", err)
	}
}
