package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_graph_nodes",
			Help: "Nodes in the interaction graph of the last run",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_graph_edges",
			Help: "Edges in the interaction graph of the last run",
		},
	)

	r.DuplicateRows = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_graph_duplicate_rows",
			Help: "Rows of the last run that repeated an existing node pair",
		},
	)

	r.CentralityIterations = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_centrality_iterations",
			Help: "Power iterations used by the last centrality computation",
		},
	)

	r.CentralityCutoff = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_centrality_cutoff",
			Help: "Centrality cutoff applied in the last run",
		},
	)

	r.FilteredNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_filtered_nodes",
			Help: "Nodes above the centrality cutoff in the last run",
		},
	)

	r.GroupsDetected = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_groups_detected",
			Help: "Coordinated groups found in the last run",
		},
	)

	r.GroupSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcd_group_size",
			Help:    "Number of accounts per detected group",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
}
