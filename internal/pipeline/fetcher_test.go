package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/planets/internal/model"
	"github.com/ppiankov/planets/internal/util"
	"github.com/ppiankov/planets/internal/worker"
)

const tinyKernel = "\\begindata\nBODY399_RADII = ( 6378.1366 6378.1366 6356.7519 )\n\\begintext\n"

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "planets-test/1.0",
		MaxBodyBytes: 1 << 20,
	}
}

func noSleep(t *testing.T) {
	t.Helper()
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = origSleep })
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "planets-test/1.0" {
			t.Errorf("unexpected User-Agent %q", ua)
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("ETag", `"pck11"`)
		_, _ = fmt.Fprint(w, tinyKernel)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(result.Data) != tinyKernel {
		t.Errorf("Unexpected body: %s", result.Data)
	}
	if result.ETag != `"pck11"` || result.ContentType != "text/plain" {
		t.Errorf("Unexpected metadata: %+v", result)
	}
	if err := Verify(result.Data, result.SHA256); err != nil {
		t.Errorf("SHA256 does not match body: %v", err)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, tinyKernel)
	}))
	defer server.Close()

	var backoffs []time.Duration
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) { backoffs = append(backoffs, d) }
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testHTTPConfig())
	if _, err := fetcher.FetchWithRetry(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
	if len(backoffs) != 2 || backoffs[0] != time.Second || backoffs[1] != 2*time.Second {
		t.Errorf("Unexpected backoffs: %v", backoffs)
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig())
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("Expected StatusError 404, got %v", err)
	}
	if got := err.Error(); got != "unexpected status: 404 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
	if attempts.Load() != 1 {
		t.Errorf("404 should not be retried, got %d attempts", attempts.Load())
	}
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig())
	if _, err := fetcher.FetchWithRetry(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, tinyKernel)
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig())
	if _, err := fetcher.FetchWithRetry(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected success after 429 retry, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts.Load())
	}
}

func TestFetch_MaxBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxBodyBytes = 32
	if _, err := NewFetcher(cfg).Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error for oversized kernel")
	}

	cfg.MaxBodyBytes = 64
	if _, err := NewFetcher(cfg).Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Kernel of exactly the limit should pass: %v", err)
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	var kernelHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		kernelHits.Add(1)
		_, _ = fmt.Fprint(w, tinyKernel)
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig())
	fetcher.SetRobots(util.NewRobotsChecker(server.Client(), "planets-test/1.0", time.Second))
	fetcher.SetLimiter(worker.NewLimiter(0, 1))

	_, err := fetcher.FetchWithRetry(context.Background(), server.URL+"/private/pck.tpc")
	if !errors.Is(err, ErrDisallowed) {
		t.Fatalf("Expected ErrDisallowed, got %v", err)
	}
	if kernelHits.Load() != 0 {
		t.Errorf("Disallowed kernel was requested")
	}

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/pub/pck.tpc"); err != nil {
		t.Fatalf("Allowed kernel failed: %v", err)
	}
}

func TestVerify(t *testing.T) {
	data := []byte(tinyKernel)
	if err := Verify(data, ""); err != nil {
		t.Errorf("empty expectation should pass: %v", err)
	}
	if err := Verify(data, "deadbeef"); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch, got %v", err)
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"503", &StatusError{Code: 503, Status: "503 Service Unavailable"}, true},
		{"500", &StatusError{Code: 500, Status: "500 Internal Server Error"}, true},
		{"502 wrapped", fmt.Errorf("download: %w", &StatusError{Code: 502}), true},
		{"429", &StatusError{Code: 429}, true},
		{"404", &StatusError{Code: 404}, false},
		{"403", &StatusError{Code: 403}, false},
		{"refused", errors.New("fetch: connection refused"), true},
		{"reset", errors.New("fetch: connection reset by peer"), true},
		{"timeout", errors.New("fetch: i/o timeout"), true},
		{"robots", fmt.Errorf("%w: x", ErrDisallowed), false},
		{"cancelled", fmt.Errorf("fetch: %w", context.Canceled), false},
		{"bad request", errors.New("create request: invalid URL"), false},
		{"read", errors.New("read body: unexpected EOF"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableFetchError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
