package algorithms

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
	"github.com/dd0wney/cluso-tcd/pkg/stats"
)

// DefaultFixedCutoff is the centrality threshold used when no quantile is
// configured.
const DefaultFixedCutoff = 0.5

// ErrUnknownNode means the score mapping and the graph disagree on node set.
var ErrUnknownNode = errors.New("centrality scores do not match graph nodes")

// CentralityFilterPolicy derives the cutoff a node's score must strictly
// exceed to survive the filter.
type CentralityFilterPolicy interface {
	Name() string
	Cutoff(scores map[string]float64) (float64, error)
}

// FixedCutoff is a constant threshold, independent of the score distribution.
type FixedCutoff struct {
	Value float64
}

func (p FixedCutoff) Name() string { return fmt.Sprintf("fixed(%g)", p.Value) }

func (p FixedCutoff) Cutoff(map[string]float64) (float64, error) { return p.Value, nil }

// QuantileCutoff thresholds at the Q-th quantile of the scores themselves.
type QuantileCutoff struct {
	Q float64
}

func (p QuantileCutoff) Name() string { return fmt.Sprintf("quantile(%g)", p.Q) }

func (p QuantileCutoff) Cutoff(scores map[string]float64) (float64, error) {
	values := make([]float64, 0, len(scores))
	for _, s := range scores {
		values = append(values, s)
	}
	return stats.Quantile(values, p.Q)
}

// LegacyCutoff is the fixed 0.5 threshold applied when no centrality quantile is configured.
func LegacyCutoff() FixedCutoff {
	return FixedCutoff{Value: DefaultFixedCutoff}
}

// PolicyFor returns QuantileCutoff when q is set and LegacyCutoff otherwise.
func PolicyFor(q *float64) CentralityFilterPolicy {
	if q == nil {
		return LegacyCutoff()
	}
	return QuantileCutoff{Q: *q}
}

// CentralityFilterResult is the outcome of FilterByCentrality.
type CentralityFilterResult struct {
	View     *graph.View
	Policy   string
	Cutoff   float64
	Retained int
}

// FilterByCentrality returns the subgraph of g induced by the nodes whose
// score is strictly greater than the policy cutoff. scores must hold exactly
// the nodes of g; the graph itself is never modified.
func FilterByCentrality(g *graph.Graph, scores map[string]float64, policy CentralityFilterPolicy) (*CentralityFilterResult, error) {
	if len(scores) != g.NodeCount() {
		return nil, fmt.Errorf("%w: %d scores for %d nodes", ErrUnknownNode, len(scores), g.NodeCount())
	}
	for _, id := range g.Nodes() {
		if _, ok := scores[id]; !ok {
			return nil, fmt.Errorf("%w: no score for node %q", ErrUnknownNode, id)
		}
	}

	cutoff, err := policy.Cutoff(scores)
	if err != nil {
		return nil, fmt.Errorf("centrality cutoff (%s): %w", policy.Name(), err)
	}

	kept := make(map[string]bool, len(scores))
	for id, s := range scores {
		if s > cutoff {
			kept[id] = true
		}
	}

	return &CentralityFilterResult{
		View:     graph.NewView(g, func(id string) bool { return kept[id] }),
		Policy:   policy.Name(),
		Cutoff:   cutoff,
		Retained: len(kept),
	}, nil
}
