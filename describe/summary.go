// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package describe

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// A Summary holds the descriptive statistics of one group of values.
type Summary struct {
	// Count is the number of values.
	Count int

	// Mean is the arithmetic mean of the values.
	Mean float64

	// StdDev is the sample standard deviation (divisor n-1). It is
	// NaN for fewer than two values.
	StdDev float64

	// Min and Max bound the values.
	Min, Max float64

	// Q1, Median, and Q3 are the 25th, 50th, and 75th percentiles,
	// interpolated linearly between the closest ranks.
	Q1, Median, Q3 float64
}

// Summarize computes the Summary of xs. xs is not modified.
//
// NaN values are missing and are skipped. If no values remain, every
// statistic other than Count is NaN.
func Summarize(xs []float64) Summary {
	nan := math.NaN()
	for i, x := range xs {
		if math.IsNaN(x) {
			// Cap the prefix so appending copies instead of overwriting xs.
			xs = dropNaN(xs[i:], xs[:i:i])
			break
		}
	}
	if len(xs) == 0 {
		return Summary{0, nan, nan, nan, nan, nan, nan, nan}
	}

	s := stats.Sample{Xs: xs}.Copy().Sort()
	sum := Summary{
		Count:  len(xs),
		Mean:   s.Mean(),
		StdDev: nan,
		Q1:     quantile(s.Xs, 0.25),
		Median: quantile(s.Xs, 0.5),
		Q3:     quantile(s.Xs, 0.75),
	}
	sum.Min, sum.Max = s.Bounds()
	if len(xs) > 1 {
		sum.StdDev = s.StdDev()
	}
	return sum
}

// dropNaN appends the non-NaN values of xs to dst.
func dropNaN(xs, dst []float64) []float64 {
	for _, x := range xs {
		if !math.IsNaN(x) {
			dst = append(dst, x)
		}
	}
	return dst
}

// quantile returns the q'th quantile of the sorted values xs, using
// linear interpolation between closest ranks (Hyndman and Fan R7).
func quantile(xs []float64, q float64) float64 {
	h := float64(len(xs)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[i] + (h-lo)*(xs[i+1]-xs[i])
}

// Stats returns the statistics of s in report order, Count first.
func (s Summary) Stats() []float64 {
	return []float64{float64(s.Count), s.Mean, s.StdDev, s.Min, s.Q1, s.Median, s.Q3, s.Max}
}

// StatNames are the labels of the values returned by Summary.Stats.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
