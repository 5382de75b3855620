package observability

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveParse(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewParseCollector(reg)
	if err != nil {
		t.Fatalf("NewParseCollector: %v", err)
	}

	c.ObserveParse(3*time.Millisecond, 2, 10, nil)
	c.ObserveParse(time.Millisecond, 0, 0, errors.New("boom"))

	if got := testutil.ToFloat64(c.Kernels.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Kernels.WithLabelValues("error")); got != 1 {
		t.Fatalf("error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Segments); got != 2 {
		t.Fatalf("segments = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Assignments); got != 10 {
		t.Fatalf("assignments = %v, want 10", got)
	}
	if n := testutil.CollectAndCount(c.Durations); n != 1 {
		t.Fatalf("duration series = %d, want 1", n)
	}
}

func TestNewParseCollector_Reuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewParseCollector(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewParseCollector(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	a.ObserveLoad(OriginCache)
	if got := testutil.ToFloat64(b.Fetches.WithLabelValues(OriginCache)); got != 1 {
		t.Fatalf("shared counter = %v, want 1", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *ParseCollector
	c.ObserveParse(time.Second, 1, 1, nil)
	c.ObserveLoad(OriginFile)
	if err := c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil WriteTextfile: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewParseCollector(reg)
	if err != nil {
		t.Fatalf("NewParseCollector: %v", err)
	}
	c.ObserveLoad(OriginNetwork)

	path := filepath.Join(t.TempDir(), "planets.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `planets_kernel_loads_total{origin="network"} 1`) {
		t.Fatalf("textfile missing load counter:\n%s", data)
	}
}
