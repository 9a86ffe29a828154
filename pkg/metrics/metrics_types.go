package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Run Metrics
	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec

	// Edge Table Metrics
	EdgesLoaded      prometheus.Gauge
	EdgesRetained    prometheus.Gauge
	SupportThreshold prometheus.Gauge

	// Graph Metrics
	GraphNodes           prometheus.Gauge
	GraphEdges           prometheus.Gauge
	DuplicateRows        prometheus.Gauge
	CentralityIterations prometheus.Gauge
	CentralityCutoff     prometheus.Gauge
	FilteredNodes        prometheus.Gauge
	GroupsDetected       prometheus.Gauge
	GroupSize            prometheus.Histogram

	// System Metrics
	LastRunTimestamp prometheus.Gauge
	BuildInfo        *prometheus.GaugeVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initRunMetrics()
	r.initGraphMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
