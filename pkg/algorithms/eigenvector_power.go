package algorithms

import (
	"container/list"
	"context"
	"math"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
)

// PowerIterationName is the registry name of the sparse provider.
const PowerIterationName = "power"

// PowerIteration computes eigenvector centrality by power iteration on the
// shifted adjacency matrix A+I, one positively weighted component at a time.
// The shift keeps bipartite components from oscillating. Memory is linear in
// the number of edges.
type PowerIteration struct {
	opts EigenvectorOptions
}

// NewPowerIteration creates a power iteration provider. Zero option fields
// take their defaults.
func NewPowerIteration(opts EigenvectorOptions) *PowerIteration {
	return &PowerIteration{opts: withDefaults(opts)}
}

func withDefaults(opts EigenvectorOptions) EigenvectorOptions {
	def := DefaultEigenvectorOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.DegeneracyTolerance <= 0 {
		opts.DegeneracyTolerance = def.DegeneracyTolerance
	}
	return opts
}

// Name implements CentralityProvider.
func (p *PowerIteration) Name() string { return PowerIterationName }

type link struct {
	to     int
	weight float64
}

type componentVector struct {
	members    []string
	vector     []float64
	eigenvalue float64
}

// Compute implements CentralityProvider.
func (p *PowerIteration) Compute(ctx context.Context, g graph.Reader) (*CentralityResult, error) {
	if g.NodeCount() == 0 {
		return nil, undefined("graph has no nodes")
	}
	if err := checkWeights(g); err != nil {
		return nil, err
	}

	var (
		best       *componentVector
		ties       int
		iterations int
	)
	for _, members := range positiveComponents(g) {
		if len(members) == 1 && !hasPositiveSelfLoop(g, members[0]) {
			continue
		}
		cv, iters, err := p.iterate(ctx, g, members)
		iterations += iters
		if err != nil {
			return nil, err
		}
		switch {
		case best == nil:
			best, ties = cv, 1
		case tied(cv.eigenvalue, best.eigenvalue, p.opts.DegeneracyTolerance):
			ties++
		case cv.eigenvalue > best.eigenvalue:
			best, ties = cv, 1
		}
	}

	if best == nil || best.eigenvalue <= zeroEigenvalue {
		return nil, undefined("graph has no positively weighted edge")
	}
	if ties > 1 {
		return nil, undefined("dominant eigenvalue %.6g is shared by %d components", best.eigenvalue, ties)
	}

	scores := make(map[string]float64, g.NodeCount())
	for _, id := range g.Nodes() {
		scores[id] = 0
	}
	for i, id := range best.members {
		scores[id] = best.vector[i]
	}
	normaliseMax(scores)

	return &CentralityResult{
		Scores:     scores,
		Eigenvalue: best.eigenvalue,
		Iterations: iterations,
		Converged:  true,
		Provider:   PowerIterationName,
		TopNodes:   findTopNodes(scores, 10),
	}, nil
}

// iterate runs power iteration over one component and returns its unit
// eigenvector with the Rayleigh quotient of the unshifted matrix.
func (p *PowerIteration) iterate(ctx context.Context, g graph.Reader, members []string) (*componentVector, int, error) {
	n := len(members)
	index := make(map[string]int, n)
	for i, id := range members {
		index[id] = i
	}
	links := make([][]link, n)
	for i, id := range members {
		for _, nb := range g.Neighbors(id) {
			if nb.Edge.Weight > 0 {
				links[i] = append(links[i], link{to: index[nb.ID], weight: nb.Edge.Weight})
			}
		}
	}

	x := make([]float64, n)
	next := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / float64(n)
	}

	threshold := float64(n) * p.opts.Tolerance
	for iter := 1; iter <= p.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, iter - 1, err
		}

		norm := 0.0
		for i := range next {
			sum := x[i]
			for _, l := range links[i] {
				sum += l.weight * x[l.to]
			}
			next[i] = sum
			norm += sum * sum
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return nil, iter, undefined("power iteration collapsed to the zero vector")
		}

		diff := 0.0
		for i := range next {
			next[i] /= norm
			diff += math.Abs(next[i] - x[i])
		}
		x, next = next, x

		if diff < threshold {
			return &componentVector{
				members:    members,
				vector:     x,
				eigenvalue: rayleigh(x, links),
			}, iter, nil
		}
	}

	return nil, p.opts.MaxIterations, undefined("power iteration did not converge in %d iterations", p.opts.MaxIterations)
}

// rayleigh returns xᵀAx for a unit vector x.
func rayleigh(x []float64, links [][]link) float64 {
	sum := 0.0
	for i := range x {
		for _, l := range links[i] {
			sum += x[i] * l.weight * x[l.to]
		}
	}
	return sum
}

func hasPositiveSelfLoop(g graph.Reader, id string) bool {
	for _, nb := range g.Neighbors(id) {
		if nb.Edge.SelfLoop() && nb.Edge.Weight > 0 {
			return true
		}
	}
	return false
}

// positiveComponents groups nodes connected through positively weighted
// edges. A zero-weight edge joins nothing in the adjacency matrix, so two
// halves bridged only by it are separate blocks.
func positiveComponents(g graph.Reader) [][]string {
	visited := make(map[string]bool, g.NodeCount())
	var out [][]string
	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}
		visited[start] = true
		members := []string{}
		queue := list.New()
		queue.PushBack(start)
		for queue.Len() > 0 {
			id := queue.Remove(queue.Front()).(string)
			members = append(members, id)
			for _, nb := range g.Neighbors(id) {
				if nb.Edge.Weight > 0 && !visited[nb.ID] {
					visited[nb.ID] = true
					queue.PushBack(nb.ID)
				}
			}
		}
		out = append(out, members)
	}
	return out
}
