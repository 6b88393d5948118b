// Package stats computes descriptive statistics over a numeric sample and
// renders them as the plain-text report returned by the stats tool.
//
// The engine is pure: the same sample, precision and percentile targets always
// produce the same report. Call parameter decoding lives in params.go and the
// tool wiring in tool.go.
package stats

import (
	stderrors "errors"
	"math"
	"sort"
)

// ErrEmptySample is returned when a summary is requested for zero values
var ErrEmptySample = stderrors.New("sample must contain at least one value")

// PercentileValue is one interpolated percentile of a sample
type PercentileValue struct {
	Rank  float64 // requested percentile in [0, 100]
	Value float64
}

// Summary holds the computed statistics for a sample
type Summary struct {
	Count       int
	Min         float64
	Max         float64
	Mean        float64
	Median      float64
	StdDev      float64
	Percentiles []PercentileValue
}

// Summarize computes the descriptive statistics of sample. Percentile targets
// outside [0, 100] are dropped; the rest are reported in ascending order.
func Summarize(sample []float64, percentiles []float64) (Summary, error) {
	n := len(sample)
	if n == 0 {
		return Summary{}, ErrEmptySample
	}

	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	lowest, highest := sorted[0], sorted[n-1]

	summary := Summary{
		Count:  n,
		Min:    lowest,
		Max:    highest,
		Median: medianOfSorted(sorted),
	}

	if lowest == highest {
		// A constant sample has no spread; summing it can still drift by an ulp.
		summary.Mean = lowest
	} else {
		// Rounding can push the mean past the sample bounds.
		summary.Mean = math.Min(math.Max(Mean(sample), lowest), highest)
		summary.StdDev = populationStdDev(sample, summary.Mean)
	}

	for _, p := range validPercentiles(percentiles) {
		summary.Percentiles = append(summary.Percentiles, PercentileValue{
			Rank:  p,
			Value: Percentile(sorted, p),
		})
	}

	return summary, nil
}

// Mean returns the arithmetic mean, summing in input order
func Mean(sample []float64) float64 {
	var total float64
	for _, x := range sample {
		total += x
	}
	return total / float64(len(sample))
}

func medianOfSorted(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

// populationStdDev divides by n, not n-1
func populationStdDev(sample []float64, mean float64) float64 {
	var sumSquares float64
	for _, x := range sample {
		d := x - mean
		sumSquares += float64(d * d)
	}
	return math.Sqrt(sumSquares / float64(len(sample)))
}

// Percentile linearly interpolates between the order statistics bracketing
// rank p (the R-7 method). sorted must be non-empty and ascending, and p must
// be within [0, 100].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	idx := (p / 100) * float64(n-1)
	lo := int(math.Floor(idx))
	hi := lo + 1
	if hi > n-1 {
		hi = n - 1
	}
	frac := idx - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}

	a, b := sorted[lo], sorted[hi]
	// explicit conversions keep the compiler from fusing into an FMA
	v := float64(a*(1-frac)) + float64(b*frac)
	// rounding can step an ulp outside the bracket
	if v < a {
		return a
	}
	if v > b {
		return b
	}
	return v
}

// validPercentiles keeps targets within [0, 100] (NaN is rejected) in ascending order
func validPercentiles(percentiles []float64) []float64 {
	valid := make([]float64, 0, len(percentiles))
	for _, p := range percentiles {
		if p >= 0 && p <= 100 {
			valid = append(valid, p)
		}
	}
	sort.Float64s(valid)
	return valid
}
