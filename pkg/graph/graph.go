// Package graph holds the undirected weighted interaction graph built from an
// edge table, and read-only induced views over it.
package graph

// Edge is an undirected edge between two account identifiers.
type Edge struct {
	U       string
	V       string
	Weight  float64
	Support float64
}

// SelfLoop reports whether both endpoints are the same node.
func (e *Edge) SelfLoop() bool {
	return e.U == e.V
}

// Neighbor is an adjacent node together with the connecting edge.
type Neighbor struct {
	ID   string
	Edge *Edge
}

// Reader is the read-only surface shared by *Graph and *View. Iteration
// order is deterministic: nodes in first-seen order, edges in insertion order.
type Reader interface {
	Nodes() []string
	HasNode(id string) bool
	Neighbors(id string) []Neighbor
	Edges() []Edge
	NodeCount() int
	EdgeCount() int
}

type adjacency struct {
	order []string
	edges map[string]*Edge
}

// Graph is a simple undirected graph. Each unordered pair carries at most one
// edge; self-loops are stored. Graph is not safe for concurrent mutation.
type Graph struct {
	nodes []string
	adj   map[string]*adjacency
	edges []*Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[string]*adjacency)}
}

// AddNode inserts id if absent.
func (g *Graph) AddNode(id string) {
	if _, ok := g.adj[id]; ok {
		return
	}
	g.nodes = append(g.nodes, id)
	g.adj[id] = &adjacency{edges: make(map[string]*Edge)}
}

// Edge returns the edge between u and v, if any.
func (g *Graph) Edge(u, v string) (*Edge, bool) {
	a, ok := g.adj[u]
	if !ok {
		return nil, false
	}
	e, ok := a.edges[v]
	return e, ok
}

// SetEdge inserts the edge u-v or, when the pair already exists, replaces
// its attributes. It reports whether a new edge was created.
func (g *Graph) SetEdge(u, v string, weight, support float64) (*Edge, bool) {
	if e, ok := g.Edge(u, v); ok {
		e.Weight = weight
		e.Support = support
		return e, false
	}

	g.AddNode(u)
	g.AddNode(v)

	e := &Edge{U: u, V: v, Weight: weight, Support: support}
	g.edges = append(g.edges, e)

	au := g.adj[u]
	au.order = append(au.order, v)
	au.edges[v] = e
	if u != v {
		av := g.adj[v]
		av.order = append(av.order, u)
		av.edges[u] = e
	}
	return e, true
}

// Nodes returns the node identifiers in first-seen order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.adj[id]
	return ok
}

// Neighbors returns the nodes adjacent to id. A self-loop lists id itself.
func (g *Graph) Neighbors(id string) []Neighbor {
	a, ok := g.adj[id]
	if !ok {
		return nil
	}
	out := make([]Neighbor, len(a.order))
	for i, n := range a.order {
		out[i] = Neighbor{ID: n, Edge: a.edges[n]}
	}
	return out
}

// Edges returns a copy of every edge in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = *e
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}
