package algorithms

import (
	"container/list"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
)

// Group is one connected component of a filtered graph.
type Group struct {
	ID      int
	Members []string // In BFS discovery order
	Size    int
	Edges   int
	Density float64 // Edge density within the group
}

// ComponentsResult partitions the nodes of a graph into groups.
type ComponentsResult struct {
	Groups    []*Group
	NodeGroup map[string]int // Node ID -> Group ID
}

// Members returns the member lists of every group, in group order.
func (r *ComponentsResult) Members() [][]string {
	out := make([][]string, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Members
	}
	return out
}

// ConnectedComponents finds all connected components of g. Groups are
// numbered in the order their first node appears in g.Nodes(); every node
// belongs to exactly one group, so isolated nodes form singleton groups.
func ConnectedComponents(g graph.Reader) *ComponentsResult {
	nodeIDs := g.Nodes()

	visited := make(map[string]bool, len(nodeIDs))
	nodeGroup := make(map[string]int, len(nodeIDs))
	groups := make([]*Group, 0)
	groupID := 0

	// BFS to find each component
	for _, start := range nodeIDs {
		if visited[start] {
			continue
		}

		group := &Group{
			ID:      groupID,
			Members: make([]string, 0),
		}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			id, ok := queue.Remove(queue.Front()).(string)
			if !ok {
				continue
			}
			group.Members = append(group.Members, id)
			nodeGroup[id] = groupID

			for _, n := range g.Neighbors(id) {
				if !visited[n.ID] {
					visited[n.ID] = true
					queue.PushBack(n.ID)
				}
			}
		}

		group.Size = len(group.Members)
		groups = append(groups, group)
		groupID++
	}

	for _, e := range g.Edges() {
		groups[nodeGroup[e.U]].Edges++
	}
	for _, group := range groups {
		group.Density = density(group.Size, group.Edges)
	}

	return &ComponentsResult{
		Groups:    groups,
		NodeGroup: nodeGroup,
	}
}

// density is the fraction of possible simple edges present. Self-loops count
// toward edges, so the value can exceed 1 on tiny groups; it is capped.
func density(size, edges int) float64 {
	if size < 2 {
		return 0
	}
	d := 2 * float64(edges) / float64(size*(size-1))
	if d > 1 {
		d = 1
	}
	return d
}
