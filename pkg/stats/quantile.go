// Package stats holds the small numeric helpers shared by the row and node
// filters and the run summary.
package stats

import (
	"errors"
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// ErrEmptySample is returned when a quantile is requested over no values.
var ErrEmptySample = errors.New("quantile of empty sample")

// ErrInvalidQuantile is returned for q outside [0, 1] or NaN.
var ErrInvalidQuantile = errors.New("quantile must be within [0, 1]")

// Number is any value a quantile can be computed over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks (numpy "linear", Hyndman-Fan type 7):
//
//	h = (n-1)·q,  Q = x[floor(h)] + (h-floor(h))·(x[floor(h)+1]-x[floor(h)])
//
// values is not modified.
func Quantile[T Number](values []T, q float64) (float64, error) {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, ErrInvalidQuantile
	}
	if len(values) == 0 {
		return 0, ErrEmptySample
	}

	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	return sortedQuantile(sorted, q), nil
}

func sortedQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Median is Quantile(values, 0.5).
func Median[T Number](values []T) (float64, error) {
	return Quantile(values, 0.5)
}
