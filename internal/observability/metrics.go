// Package observability exposes Prometheus metrics for kernel loading and
// parsing. Batch runs export them to a node-exporter textfile.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch origins
const (
	OriginFile    = "file"
	OriginCache   = "cache"
	OriginNetwork = "network"
)

// ParseCollector bundles the kernel metrics. A nil collector records nothing.
type ParseCollector struct {
	gatherer prometheus.Gatherer

	Kernels     *prometheus.CounterVec
	Fetches     *prometheus.CounterVec
	Segments    prometheus.Counter
	Assignments prometheus.Counter
	Durations   prometheus.Histogram
}

// NewParseCollector registers the kernel metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewParseCollector(reg prometheus.Registerer) (*ParseCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	kernels, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planets_kernels_parsed_total",
		Help: "Kernels parsed, labeled by status (ok or error).",
	}, []string{"status"}), "planets_kernels_parsed_total")
	if err != nil {
		return nil, err
	}

	fetches, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planets_kernel_loads_total",
		Help: "Kernel sources loaded, labeled by origin (file, cache or network).",
	}, []string{"origin"}), "planets_kernel_loads_total")
	if err != nil {
		return nil, err
	}

	segments, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planets_data_segments_total",
		Help: "Data segments extracted from parsed kernels.",
	}), "planets_data_segments_total")
	if err != nil {
		return nil, err
	}

	assignments, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planets_assignments_total",
		Help: "Assignments parsed from data segments, duplicates included.",
	}), "planets_assignments_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planets_parse_duration_seconds",
		Help:    "Time spent parsing one kernel, loading excluded.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "planets_parse_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &ParseCollector{
		gatherer:    gatherer,
		Kernels:     kernels,
		Fetches:     fetches,
		Segments:    segments,
		Assignments: assignments,
		Durations:   durations,
	}, nil
}

// ObserveParse records one parse attempt
func (c *ParseCollector) ObserveParse(elapsed time.Duration, segments, assignments int, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Kernels.WithLabelValues(status).Inc()
	if err != nil {
		return
	}
	c.Segments.Add(float64(segments))
	c.Assignments.Add(float64(assignments))
	c.Durations.Observe(elapsed.Seconds())
}

// ObserveLoad records where a kernel's bytes came from
func (c *ParseCollector) ObserveLoad(origin string) {
	if c == nil {
		return
	}
	c.Fetches.WithLabelValues(origin).Inc()
}

// WriteTextfile writes every metric of the collector's registry in the text
// exposition format, for the node exporter textfile collector
func (c *ParseCollector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// register adds a collector, reusing an existing one of the same type so that
// repeated construction against one registry is harmless
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
