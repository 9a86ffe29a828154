package algorithms

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
)

// scoredGraph returns a graph with one edge per consecutive pair of ids and a
// score for each id
func scoredGraph(scores []float64) (*graph.Graph, map[string]float64) {
	g := graph.New()
	m := make(map[string]float64, len(scores))
	prev := ""
	for i, s := range scores {
		id := fmt.Sprintf("n%d", i)
		g.AddNode(id)
		if prev != "" {
			g.SetEdge(prev, id, 1, 1)
		}
		m[id] = s
		prev = id
	}
	return g, m
}

// TestFixedCutoff_IgnoresDistribution verifies the fixed policy is exactly 0.5
// whatever the scores look like
func TestFixedCutoff_IgnoresDistribution(t *testing.T) {
	distributions := [][]float64{
		{0.9, 0.95, 1},
		{0.01, 0.02, 1},
		{0.5, 0.5, 0.5},
		{1},
	}

	for i, scores := range distributions {
		g, m := scoredGraph(scores)
		result, err := FilterByCentrality(g, m, PolicyFor(nil))
		if err != nil {
			t.Fatalf("distribution %d: %v", i, err)
		}
		if result.Cutoff != 0.5 {
			t.Errorf("distribution %d: cutoff = %v, want 0.5", i, result.Cutoff)
		}
	}
}

func TestFilterByCentrality_StrictCutoff(t *testing.T) {
	g, m := scoredGraph([]float64{0.5, 0.51, 1})

	result, err := FilterByCentrality(g, m, FixedCutoff{Value: 0.5})
	if err != nil {
		t.Fatalf("FilterByCentrality failed: %v", err)
	}

	if result.View.HasNode("n0") {
		t.Error("A node scoring exactly the cutoff must be excluded")
	}
	if !result.View.HasNode("n1") || !result.View.HasNode("n2") {
		t.Error("Nodes above the cutoff must be retained")
	}
	if result.Retained != 2 {
		t.Errorf("Retained = %d, want 2", result.Retained)
	}
	if result.View.EdgeCount() != 1 {
		t.Errorf("Expected the n1-n2 edge only, got %d edges", result.View.EdgeCount())
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Error("FilterByCentrality must not modify the graph")
	}
}

func TestFilterByCentrality_Quantile(t *testing.T) {
	g, m := scoredGraph([]float64{0, 0.25, 0.5, 0.75, 1})
	q := 0.5

	result, err := FilterByCentrality(g, m, PolicyFor(&q))
	if err != nil {
		t.Fatalf("FilterByCentrality failed: %v", err)
	}
	if result.Cutoff != 0.5 {
		t.Errorf("Cutoff = %v, want 0.5", result.Cutoff)
	}
	if got := result.View.Nodes(); len(got) != 2 || got[0] != "n3" || got[1] != "n4" {
		t.Errorf("Retained nodes = %v, want [n3 n4]", got)
	}
	if result.Policy != "quantile(0.5)" {
		t.Errorf("Policy = %q", result.Policy)
	}
}

func TestFilterByCentrality_UnknownNode(t *testing.T) {
	g, m := scoredGraph([]float64{0.2, 0.9})

	missing := map[string]float64{"n0": 0.2}
	if _, err := FilterByCentrality(g, missing, PolicyFor(nil)); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("missing score: expected ErrUnknownNode, got %v", err)
	}

	extra := map[string]float64{"n0": 0.2, "n1": 0.9, "ghost": 1}
	if _, err := FilterByCentrality(g, extra, PolicyFor(nil)); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("extra score: expected ErrUnknownNode, got %v", err)
	}

	renamed := map[string]float64{"n0": 0.2, "ghost": 0.9}
	if _, err := FilterByCentrality(g, renamed, PolicyFor(nil)); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("renamed score: expected ErrUnknownNode, got %v", err)
	}

	if _, err := FilterByCentrality(g, m, PolicyFor(nil)); err != nil {
		t.Errorf("matching scores: %v", err)
	}
}

func TestPolicyFor(t *testing.T) {
	if p, ok := PolicyFor(nil).(FixedCutoff); !ok || p.Value != DefaultFixedCutoff {
		t.Errorf("PolicyFor(nil) = %#v, want FixedCutoff{0.5}", PolicyFor(nil))
	}
	q := 0.9
	if p, ok := PolicyFor(&q).(QuantileCutoff); !ok || p.Q != 0.9 {
		t.Errorf("PolicyFor(&0.9) = %#v, want QuantileCutoff{0.9}", PolicyFor(&q))
	}
}

// TestCentralityFilterProperties checks both policies against the filter
// invariants
func TestCentralityFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("retained nodes are exactly those above the cutoff", prop.ForAll(
		func(scores []float64, q float64) bool {
			g, m := scoredGraph(scores)
			for _, policy := range []CentralityFilterPolicy{FixedCutoff{Value: 0.5}, QuantileCutoff{Q: q}} {
				result, err := FilterByCentrality(g, m, policy)
				if err != nil {
					return false
				}
				for id, s := range m {
					if result.View.HasNode(id) != (s > result.Cutoff) {
						return false
					}
				}
				for _, e := range result.View.Edges() {
					if m[e.U] <= result.Cutoff || m[e.V] <= result.Cutoff {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.Float64Range(0, 1)),
		gen.Float64Range(0, 1),
	))

	properties.Property("raising the cutoff never adds nodes", prop.ForAll(
		func(scores []float64, lo, hi float64) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			g, m := scoredGraph(scores)
			low, err := FilterByCentrality(g, m, FixedCutoff{Value: lo})
			if err != nil {
				return false
			}
			high, err := FilterByCentrality(g, m, FixedCutoff{Value: hi})
			if err != nil {
				return false
			}
			for _, id := range high.View.Nodes() {
				if !low.View.HasNode(id) {
					return false
				}
			}
			return high.Retained <= low.Retained
		},
		gen.SliceOfN(12, gen.Float64Range(0, 1)),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}
