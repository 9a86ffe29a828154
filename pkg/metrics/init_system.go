package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSystemMetrics() {
	r.LastRunTimestamp = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tcd_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		},
	)

	r.BuildInfo = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tcd_build_info",
			Help: "Build information, value is always 1",
		},
		[]string{"version"},
	)
}
