package stats

import (
	"errors"
	"math"
	"testing"
)

func TestQuantile_Linear(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"single value", []float64{7}, 0.3, 7},
		{"median odd", []float64{3, 1, 2}, 0.5, 2},
		{"median even", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"min", []float64{5, 9, 1}, 0, 1},
		{"max", []float64{5, 9, 1}, 1, 9},
		// numpy.quantile([1..10], 0.05) == 1.45
		{"lower tail", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 0.05, 1.45},
		{"ties", []float64{5, 5, 5, 5}, 0.05, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quantile(tt.values, tt.q)
			if err != nil {
				t.Fatalf("Quantile failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.values, tt.q, got, tt.want)
			}
		})
	}
}

func TestQuantile_Integers(t *testing.T) {
	got, err := Quantile([]int{1, 2, 3, 4}, 0.25)
	if err != nil {
		t.Fatalf("Quantile failed: %v", err)
	}
	if math.Abs(got-1.75) > 1e-9 {
		t.Errorf("Quantile = %v, want 1.75", got)
	}
}

func TestQuantile_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	if _, err := Median(values); err != nil {
		t.Fatalf("Median failed: %v", err)
	}
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestQuantile_Errors(t *testing.T) {
	if _, err := Quantile([]float64{}, 0.5); !errors.Is(err, ErrEmptySample) {
		t.Errorf("expected ErrEmptySample, got %v", err)
	}
	for _, q := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := Quantile([]float64{1}, q); !errors.Is(err, ErrInvalidQuantile) {
			t.Errorf("q=%v: expected ErrInvalidQuantile, got %v", q, err)
		}
	}
}

func TestMedian_GroupSizes(t *testing.T) {
	got, err := Median([]int{2, 7, 3, 3})
	if err != nil {
		t.Fatalf("Median failed: %v", err)
	}
	if got != 3 {
		t.Errorf("Median = %v, want 3", got)
	}
	if _, err := Median([]int{}); !errors.Is(err, ErrEmptySample) {
		t.Errorf("expected ErrEmptySample, got %v", err)
	}
}
