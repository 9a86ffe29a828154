package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordRun counts a finished run and stamps its completion time
func (r *Registry) RecordRun(status string, finished time.Time) {
	r.RunsTotal.WithLabelValues(status).Inc()
	r.LastRunTimestamp.Set(float64(finished.Unix()))
}

// ObserveStage records how long a pipeline stage took
func (r *Registry) ObserveStage(stage string, duration time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordLoad records the edge table size before and after support filtering
func (r *Registry) RecordLoad(loaded, retained int, threshold float64) {
	r.EdgesLoaded.Set(float64(loaded))
	r.EdgesRetained.Set(float64(retained))
	r.SupportThreshold.Set(threshold)
}

// RecordGraph records the size of the interaction graph and how many rows
// were merged into an existing edge
func (r *Registry) RecordGraph(nodes, edges, duplicates int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	r.DuplicateRows.Set(float64(duplicates))
}

// RecordCentrality records the centrality computation and filter outcome
func (r *Registry) RecordCentrality(iterations int, cutoff float64, retained int) {
	r.CentralityIterations.Set(float64(iterations))
	r.CentralityCutoff.Set(cutoff)
	r.FilteredNodes.Set(float64(retained))
}

// RecordGroups records the detected groups and their sizes
func (r *Registry) RecordGroups(sizes []int) {
	r.GroupsDetected.Set(float64(len(sizes)))
	for _, s := range sizes {
		r.GroupSize.Observe(float64(s))
	}
}

// SetBuildInfo publishes the running version
func (r *Registry) SetBuildInfo(version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BuildInfo.Reset()
	r.BuildInfo.WithLabelValues(version).Set(1)
}

// WriteTextfile writes every metric to path in the text exposition format
// read by the node exporter textfile collector. Batch runs have no scrape
// endpoint, so this is how their metrics leave the process.
func (r *Registry) WriteTextfile(path string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
