// Package visualization computes node positions for rendered graph
// artifacts.
package visualization

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters. Units are inches, the unit
// Graphviz expects for pinned positions.
type LayoutConfig struct {
	Width   float64 // Canvas width
	Height  float64 // Canvas height
	Padding float64 // Padding from edges
}

// DefaultLayoutConfig returns a 12x12 inch canvas with half an inch of padding.
func DefaultLayoutConfig() *LayoutConfig {
	return &LayoutConfig{Width: 12, Height: 12, Padding: 0.5}
}

// Layout positions the members of each group.
type Layout interface {
	ComputeLayout(groups [][]string) map[string]Position
}
