package algorithms

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
)

var (
	// ErrCentralityUndefined means the graph admits no unique dominant
	// eigenvector, or the iteration did not converge within its budget.
	ErrCentralityUndefined = errors.New("eigenvector centrality undefined")
	// ErrUnknownProvider is returned for an unregistered provider name.
	ErrUnknownProvider = errors.New("unknown centrality provider")
)

// undefined wraps a reason as ErrCentralityUndefined.
func undefined(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCentralityUndefined, fmt.Sprintf(format, args...))
}

// EigenvectorOptions configures eigenvector centrality
type EigenvectorOptions struct {
	MaxIterations int     // Iteration budget per component (power iteration only)
	Tolerance     float64 // Per-node convergence threshold
	// DegeneracyTolerance is the relative gap below which two candidate
	// dominant eigenvalues are considered equal.
	DegeneracyTolerance float64
}

// DefaultEigenvectorOptions returns default eigenvector centrality configuration
func DefaultEigenvectorOptions() EigenvectorOptions {
	return EigenvectorOptions{
		MaxIterations:       100,
		Tolerance:           1e-6,
		DegeneracyTolerance: 1e-9,
	}
}

// zeroEigenvalue is the largest eigenvalue still treated as "no edges".
const zeroEigenvalue = 1e-12

// CentralityResult contains eigenvector centrality for every node.
type CentralityResult struct {
	Scores     map[string]float64 // Node ID -> score in [0, 1], max is 1
	Eigenvalue float64            // Dominant eigenvalue of the adjacency matrix
	Iterations int                // Iterations performed (0 for direct solvers)
	Converged  bool
	Provider   string
	TopNodes   []RankedNode // Top N nodes by score
}

// GetNodeScore returns the centrality of a specific node
func (r *CentralityResult) GetNodeScore(id string) float64 {
	return r.Scores[id]
}

// CentralityProvider computes eigenvector centrality over a graph.
//
// Implementations return ErrCentralityUndefined (wrapped) when the graph is
// empty, has no positively weighted edge, has a negative or NaN weight, or has
// a dominant eigenvalue of multiplicity greater than one. Scores are
// normalised so the most central node scores 1; nodes outside the component
// carrying the dominant eigenvector score 0.
type CentralityProvider interface {
	Name() string
	Compute(ctx context.Context, g graph.Reader) (*CentralityResult, error)
}

// NewCentralityProvider returns the provider registered under name:
// "power" (sparse power iteration, the default) or "dense".
func NewCentralityProvider(name string, opts EigenvectorOptions) (CentralityProvider, error) {
	switch name {
	case "", PowerIterationName:
		return NewPowerIteration(opts), nil
	case DenseEigenName:
		return NewDenseEigen(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// checkWeights rejects weights for which the Perron-Frobenius argument fails.
func checkWeights(g graph.Reader) error {
	for _, e := range g.Edges() {
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return undefined("edge %s-%s has non-finite weight", e.U, e.V)
		}
		if e.Weight < 0 {
			return undefined("edge %s-%s has negative weight %g", e.U, e.V, e.Weight)
		}
	}
	return nil
}

// tied reports whether two eigenvalues are indistinguishable.
func tied(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// normaliseMax rescales scores so the maximum is 1, clamping round-off below
// zero.
func normaliseMax(scores map[string]float64) {
	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	for id, s := range scores {
		if maxScore > 0 {
			s /= maxScore
		}
		if s < 0 {
			s = 0
		}
		scores[id] = s
	}
}

// RankedNode represents a node with its centrality
type RankedNode struct {
	NodeID string
	Score  float64
}

// rankedNodeHeap is a min-heap by score; ties order by descending ID so the
// lexicographically smaller ID survives.
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].NodeID > h[j].NodeID
}
func (h rankedNodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// findTopNodes returns the n highest-scoring nodes, descending.
// Time complexity: O(m log n) for m scores.
func findTopNodes(scores map[string]float64, n int) []RankedNode {
	if n <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, n)
	heap.Init(&h)

	for id, score := range scores {
		rn := RankedNode{NodeID: id, Score: score}
		if h.Len() < n {
			heap.Push(&h, rn)
		} else if (rankedNodeHeap{h[0], rn}).Less(0, 1) {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	result := make([]RankedNode, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].NodeID < result[j].NodeID
	})
	return result
}

// TopN returns up to n of the highest-scoring nodes.
func (r *CentralityResult) TopN(n int) []RankedNode {
	if n > len(r.TopNodes) {
		return r.TopNodes
	}
	return r.TopNodes[:n]
}
