package core

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"single value", []float64{7}, 0.99, 7},
		{"two values", []float64{0, 100}, 0.99, 99},
		{"unsorted input", []float64{30, 10, 20}, 0.5, 20},
		{"interpolated", []float64{1, 2, 3, 4}, 0.99, 3.97},
		{"p0 is min", []float64{5, 1, 9}, 0, 1},
		{"p1 is max", []float64{5, 1, 9}, 1, 9},
		{"repeated values", []float64{2, 2, 2, 2}, 0.99, 2},
		{"p clamped above", []float64{1, 2}, 1.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.values, tt.p)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_Empty(t *testing.T) {
	if got := Percentile(nil, 0.99); !math.IsNaN(got) {
		t.Errorf("Percentile(nil) = %v, want NaN", got)
	}
}

func TestPercentile_DoesNotSortInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 0.5)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input modified: %v", values)
	}
}
