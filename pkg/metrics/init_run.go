package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRunMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcd_runs_total",
			Help: "Total number of detection runs by outcome",
		},
		[]string{"status"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tcd_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
		[]string{"stage"},
	)

	r.EdgesLoaded = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_edges_loaded",
			Help: "Rows read from the edge table in the last run",
		},
	)

	r.EdgesRetained = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_edges_retained",
			Help: "Rows kept by the support filter in the last run",
		},
	)

	r.SupportThreshold = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_support_threshold",
			Help: "Support threshold applied in the last run",
		},
	)
}
