package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), rawURL string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	u, err := fn(req)
	require.NoError(t, err)
	if u == nil {
		return ""
	}
	return u.String()
}

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "http://secure-proxy:8443", "localhost, .internal.test,mirror.example.com:443")

	assert.Equal(t, "http://proxy:8080", proxyFor(t, fn, "http://naif.jpl.nasa.gov/pck.tpc"))
	assert.Equal(t, "http://secure-proxy:8443", proxyFor(t, fn, "https://naif.jpl.nasa.gov/pck.tpc"))
	assert.Empty(t, proxyFor(t, fn, "http://localhost:9000/pck.tpc"))
	assert.Empty(t, proxyFor(t, fn, "https://kernels.internal.test/pck.tpc"))
	assert.Empty(t, proxyFor(t, fn, "https://mirror.example.com/pck.tpc"))
	assert.Empty(t, proxyFor(t, fn, "https://a.mirror.example.com/pck.tpc"))
}

func TestNewProxyFunc_HTTPOnly(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "", "")
	assert.Equal(t, "http://proxy:8080", proxyFor(t, fn, "https://naif.jpl.nasa.gov/pck.tpc"))
}

func TestNewProxyFunc_Wildcard(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "", "*")
	assert.Empty(t, proxyFor(t, fn, "http://naif.jpl.nasa.gov/pck.tpc"))
}

func robotsServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if body == "" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits int32
	srv := robotsServer(t, "User-agent: planets\nDisallow: /private/\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n", &hits)

	rc := NewRobotsChecker(srv.Client(), "planets/0.9 (+https://github.com/ppiankov/planets)", time.Second)
	ctx := context.Background()

	allowed, delay, err := rc.CanFetch(ctx, srv.URL+"/pub/pck00011.tpc")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2*time.Second, delay)

	allowed, _, err = rc.CanFetch(ctx, srv.URL+"/private/pck.tpc")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "robots.txt should be fetched once per host")

	rc.Clear()
	assert.True(t, rc.IsAllowed(ctx, srv.URL+"/pub/pck00011.tpc"))
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestRobotsChecker_OtherAgentsBlocked(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /\n", nil)

	rc := NewRobotsChecker(srv.Client(), "planets/0.9", time.Second)
	assert.False(t, rc.IsAllowed(context.Background(), srv.URL+"/pck.tpc"))
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	srv := robotsServer(t, "", nil)

	rc := NewRobotsChecker(srv.Client(), "planets", time.Second)
	assert.True(t, rc.IsAllowed(context.Background(), srv.URL+"/pck.tpc"))
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	rc := NewRobotsChecker(nil, "planets", 200*time.Millisecond)
	allowed, delay, err := rc.CanFetch(context.Background(), addr+"/pck.tpc")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, delay)
}

func TestRobotsChecker_NonHTTP(t *testing.T) {
	rc := NewRobotsChecker(nil, "planets", time.Second)
	assert.True(t, rc.IsAllowed(context.Background(), "file:///tmp/pck.tpc"))

	_, _, err := rc.CanFetch(context.Background(), "::bad")
	assert.Error(t, err)
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "planets", NormalizeUserAgent("planets/0.9 (+https://github.com/ppiankov/planets)"))
	assert.Equal(t, "curl", NormalizeUserAgent("curl"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}
