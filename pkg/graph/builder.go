package graph

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-tcd/pkg/edgetable"
)

// DuplicatePolicy decides how a repeated unordered pair combines with the
// edge already in the graph. Weight and support are combined independently.
type DuplicatePolicy int

const (
	// Overwrite keeps the attributes of the last occurrence.
	Overwrite DuplicatePolicy = iota
	// Sum adds the attributes of every occurrence.
	Sum
	// Mean averages the attributes of every occurrence.
	Mean
	// Max keeps the largest value seen for each attribute.
	Max
)

func (p DuplicatePolicy) String() string {
	switch p {
	case Overwrite:
		return "overwrite"
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	case Max:
		return "max"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy maps a configuration string onto a policy. The empty
// string selects Overwrite.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite", "last":
		return Overwrite, nil
	case "sum":
		return Sum, nil
	case "mean", "avg", "average":
		return Mean, nil
	case "max":
		return Max, nil
	default:
		return Overwrite, fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Builder accumulates rows into a Graph.
type Builder struct {
	g          *Graph
	policy     DuplicatePolicy
	seen       map[*Edge]int
	duplicates int
}

// NewBuilder returns a builder that resolves repeated pairs with policy.
func NewBuilder(policy DuplicatePolicy) *Builder {
	return &Builder{
		g:      New(),
		policy: policy,
		seen:   make(map[*Edge]int),
	}
}

// Add records one observation of the pair u-v.
func (b *Builder) Add(u, v string, weight, support float64) {
	e, ok := b.g.Edge(u, v)
	if !ok {
		e, _ = b.g.SetEdge(u, v, weight, support)
		b.seen[e] = 1
		return
	}

	b.duplicates++
	n := b.seen[e] + 1
	b.seen[e] = n

	switch b.policy {
	case Sum:
		e.Weight += weight
		e.Support += support
	case Mean:
		e.Weight += (weight - e.Weight) / float64(n)
		e.Support += (support - e.Support) / float64(n)
	case Max:
		if weight > e.Weight {
			e.Weight = weight
		}
		if support > e.Support {
			e.Support = support
		}
	default:
		e.Weight = weight
		e.Support = support
	}
}

// Duplicates returns how many rows repeated an existing pair.
func (b *Builder) Duplicates() int {
	return b.duplicates
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *Graph {
	return b.g
}

// BuildStats summarises how rows mapped onto edges.
type BuildStats struct {
	Rows int
	// Duplicates counts rows that repeated a pair already in the graph and
	// were merged by the duplicate policy.
	Duplicates int
	SelfLoops  int
}

// Build converts edge table rows into a graph.
func Build(rows []edgetable.Row, policy DuplicatePolicy) (*Graph, BuildStats) {
	b := NewBuilder(policy)
	for _, r := range rows {
		b.Add(r.Node1, r.Node2, r.Weight, r.Support)
	}

	stats := BuildStats{Rows: len(rows), Duplicates: b.Duplicates()}
	for _, e := range b.g.edges {
		if e.SelfLoop() {
			stats.SelfLoops++
		}
	}
	return b.Graph(), stats
}
