package visualization

import (
	"math"
)

// GroupLayout gives every group its own cell on a square grid and arranges
// the group's members on a circle inside that cell. Singleton groups sit at
// the centre of their cell. The result depends only on the order of groups
// and members, so repeated runs over the same input place nodes identically.
type GroupLayout struct {
	config *LayoutConfig
}

// NewGroupLayout creates a new group layout. A nil config uses
// DefaultLayoutConfig.
func NewGroupLayout(config *LayoutConfig) *GroupLayout {
	if config == nil {
		config = DefaultLayoutConfig()
	}
	if config.Padding == 0 {
		config.Padding = 0.5
	}
	return &GroupLayout{config: config}
}

// ComputeLayout arranges each group in a circle within its grid cell
func (gl *GroupLayout) ComputeLayout(groups [][]string) map[string]Position {
	positions := make(map[string]Position)

	if len(groups) == 0 {
		return positions
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(groups)))))
	rows := (len(groups) + cols - 1) / cols

	cellW := (gl.config.Width - 2*gl.config.Padding) / float64(cols)
	cellH := (gl.config.Height - 2*gl.config.Padding) / float64(rows)
	radius := 0.4 * math.Min(cellW, cellH)

	for i, members := range groups {
		centerX := gl.config.Padding + (float64(i%cols)+0.5)*cellW
		centerY := gl.config.Padding + (float64(i/cols)+0.5)*cellH

		if len(members) == 1 {
			positions[members[0]] = Position{X: centerX, Y: centerY}
			continue
		}

		angleStep := 2 * math.Pi / float64(len(members))
		for j, id := range members {
			angle := float64(j) * angleStep
			positions[id] = Position{
				X: centerX + radius*math.Cos(angle),
				Y: centerY + radius*math.Sin(angle),
			}
		}
	}

	return positions
}

var _ Layout = (*GroupLayout)(nil)
