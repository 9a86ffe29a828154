package algorithms

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
)

// DenseEigenName is the registry name of the dense provider.
const DenseEigenName = "dense"

// snapToZero is the normalised score below which dense solver round-off is
// reported as exactly zero.
const snapToZero = 1e-12

// DenseEigen computes eigenvector centrality from a full symmetric
// eigendecomposition of the weighted adjacency matrix. It needs O(n²) memory
// and O(n³) time, so it suits small graphs and cross-checking PowerIteration.
type DenseEigen struct {
	opts EigenvectorOptions
}

// NewDenseEigen creates a dense provider. Only DegeneracyTolerance is used.
func NewDenseEigen(opts EigenvectorOptions) *DenseEigen {
	return &DenseEigen{opts: withDefaults(opts)}
}

// Name implements CentralityProvider.
func (d *DenseEigen) Name() string { return DenseEigenName }

// Compute implements CentralityProvider.
func (d *DenseEigen) Compute(ctx context.Context, g graph.Reader) (*CentralityResult, error) {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return nil, undefined("graph has no nodes")
	}
	if err := checkWeights(g); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := make(map[string]int, n)
	for i, id := range nodes {
		index[id] = i
	}
	a := mat.NewSymDense(n, nil)
	for _, e := range g.Edges() {
		a.SetSym(index[e.U], index[e.V], e.Weight)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(a, true); !ok {
		return nil, undefined("symmetric eigendecomposition failed")
	}
	values := eig.Values(nil)
	lambda := values[n-1]
	if lambda <= zeroEigenvalue {
		return nil, undefined("graph has no positively weighted edge")
	}
	if n > 1 && tied(lambda, values[n-2], d.opts.DegeneracyTolerance) {
		return nil, undefined("dominant eigenvalue %.6g is not simple", lambda)
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	v := mat.Col(nil, n-1, &vectors)

	// The Perron vector is determined up to sign.
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	if sum < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}

	scores := make(map[string]float64, n)
	for i, id := range nodes {
		scores[id] = v[i]
	}
	normaliseMax(scores)
	for id, s := range scores {
		if s < snapToZero {
			scores[id] = 0
		}
	}

	return &CentralityResult{
		Scores:     scores,
		Eigenvalue: lambda,
		Converged:  true,
		Provider:   DenseEigenName,
		TopNodes:   findTopNodes(scores, 10),
	}, nil
}
