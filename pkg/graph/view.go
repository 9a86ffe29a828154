package graph

// View is a read-only induced subgraph: the nodes of an underlying graph for
// which keep returns true, and the edges whose endpoints are both kept. The
// view reads through to the graph on every call and never mutates it.
type View struct {
	g    *Graph
	keep func(id string) bool
}

// NewView returns the subgraph of g induced by keep.
func NewView(g *Graph, keep func(id string) bool) *View {
	return &View{g: g, keep: keep}
}

// Graph returns the underlying graph.
func (v *View) Graph() *Graph {
	return v.g
}

func (v *View) Nodes() []string {
	out := make([]string, 0, len(v.g.nodes))
	for _, id := range v.g.nodes {
		if v.keep(id) {
			out = append(out, id)
		}
	}
	return out
}

func (v *View) HasNode(id string) bool {
	return v.g.HasNode(id) && v.keep(id)
}

func (v *View) Neighbors(id string) []Neighbor {
	if !v.HasNode(id) {
		return nil
	}
	all := v.g.Neighbors(id)
	out := all[:0]
	for _, n := range all {
		if v.keep(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

func (v *View) Edges() []Edge {
	out := make([]Edge, 0, len(v.g.edges))
	for _, e := range v.g.edges {
		if v.keep(e.U) && v.keep(e.V) {
			out = append(out, *e)
		}
	}
	return out
}

func (v *View) NodeCount() int {
	n := 0
	for _, id := range v.g.nodes {
		if v.keep(id) {
			n++
		}
	}
	return n
}

func (v *View) EdgeCount() int {
	n := 0
	for _, e := range v.g.edges {
		if v.keep(e.U) && v.keep(e.V) {
			n++
		}
	}
	return n
}

var (
	_ Reader = (*Graph)(nil)
	_ Reader = (*View)(nil)
)
