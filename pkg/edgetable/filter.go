package edgetable

import (
	"fmt"

	"github.com/dd0wney/cluso-tcd/pkg/stats"
)

// DefaultSupportQuantile discards roughly the bottom 5% of rows by support.
const DefaultSupportQuantile = 0.05

// SupportPolicy computes the support threshold for a table. Rows are kept
// when their support is strictly greater than the threshold.
type SupportPolicy interface {
	Name() string
	Threshold(supports []float64) (float64, error)
}

// QuantileSupport thresholds at the Q-th quantile of the table's own
// support column.
type QuantileSupport struct {
	Q float64
}

func (p QuantileSupport) Name() string {
	return fmt.Sprintf("quantile(%g)", p.Q)
}

func (p QuantileSupport) Threshold(supports []float64) (float64, error) {
	return stats.Quantile(supports, p.Q)
}

// PositiveSupport keeps every row with positive support.
type PositiveSupport struct{}

func (PositiveSupport) Name() string { return "positive" }

func (PositiveSupport) Threshold([]float64) (float64, error) { return 0, nil }

// FilterResult is the outcome of applying a SupportPolicy.
type FilterResult struct {
	Table     *Table
	Policy    string
	Threshold float64
	Kept      int
	Dropped   int
}

// Filter returns the rows of t whose support exceeds the policy threshold.
// An empty table passes through unchanged with a zero threshold.
func Filter(t *Table, policy SupportPolicy) (*FilterResult, error) {
	res := &FilterResult{Policy: policy.Name()}
	if t.Empty() {
		res.Table = t
		return res, nil
	}

	threshold, err := policy.Threshold(t.Supports())
	if err != nil {
		return nil, fmt.Errorf("support threshold (%s): %w", policy.Name(), err)
	}

	kept := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Support > threshold {
			kept = append(kept, r)
		}
	}

	res.Table = &Table{Columns: t.Columns, Rows: kept}
	res.Threshold = threshold
	res.Kept = len(kept)
	res.Dropped = len(t.Rows) - len(kept)
	return res, nil
}
