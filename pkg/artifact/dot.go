package artifact

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
	"github.com/dd0wney/cluso-tcd/pkg/visualization"
)

// WriteDOT renders g as a Graphviz DOT document with neato coordinates.
// Nodes are pinned to a GroupLayout over groups, so every group is drawn in
// its own cell and reruns produce identical output. Edges carry weight and
// support attributes; nodes carry centrality when scores is non-nil.
func WriteDOT(ctx context.Context, w io.Writer, g graph.Reader, scores map[string]float64, groups [][]string) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("graphviz: %w", err)
	}
	defer gv.Close()

	dot, err := gv.Graph(graphviz.WithName("coordinated"), graphviz.WithDirectedType(graphviz.UnDirected))
	if err != nil {
		return fmt.Errorf("graphviz graph: %w", err)
	}
	defer dot.Close()

	positions := visualization.NewGroupLayout(nil).ComputeLayout(groups)

	nodes := make(map[string]*graphviz.Node, g.NodeCount())
	for _, id := range g.Nodes() {
		n, err := dot.CreateNodeByName(id)
		if err != nil {
			return fmt.Errorf("graphviz node %q: %w", id, err)
		}
		if pos, ok := positions[id]; ok {
			if err := n.SafeSet("pos", fmt.Sprintf("%.4f,%.4f!", pos.X, pos.Y), ""); err != nil {
				return err
			}
		}
		if score, ok := scores[id]; ok {
			if err := n.SafeSet("centrality", formatFloat(score), ""); err != nil {
				return err
			}
		}
		nodes[id] = n
	}

	for i, e := range g.Edges() {
		edge, err := dot.CreateEdgeByName(fmt.Sprintf("e%d", i), nodes[e.U], nodes[e.V])
		if err != nil {
			return fmt.Errorf("graphviz edge %s-%s: %w", e.U, e.V, err)
		}
		if err := edge.SafeSet("weight", formatFloat(e.Weight), ""); err != nil {
			return err
		}
		if err := edge.SafeSet("support", formatFloat(e.Support), ""); err != nil {
			return err
		}
	}

	gv.SetLayout(graphviz.NEATO)
	if err := gv.Render(ctx, dot, graphviz.XDOT, w); err != nil {
		return fmt.Errorf("graphviz render: %w", err)
	}
	return nil
}
