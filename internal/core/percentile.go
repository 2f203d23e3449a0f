package core

import (
	"math"
	"slices"
)

// CapPercentile is the percentile both delay columns are capped at.
const CapPercentile = 0.99

// Percentile returns the p-th quantile (0 <= p <= 1) of values using linear
// interpolation between the two closest ranks: with the values sorted
// ascending and h = (n-1)*p, the result is x[floor(h)] plus the fractional
// part of h times the gap to the next value.
//
// Returns NaN for an empty input. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
