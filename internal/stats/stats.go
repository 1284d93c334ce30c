// Package stats holds the descriptive statistics used by the preprocessing
// stages and the analysis report. Functions never panic on degenerate input;
// they return NaN where the statistic is undefined.
package stats

import (
	"math"
	"sort"
)

// Deviation degrees of freedom
const (
	Population = 0
	Sample     = 1
)

// Mean computes the arithmetic mean; NaN for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Variance computes the variance with ddof delta degrees of freedom
// (Sample or Population). NaN when len(x) <= ddof.
func Variance(x []float64, ddof int) float64 {
	n := len(x)
	if n == 0 || n <= ddof {
		return math.NaN()
	}
	mean := Mean(x)
	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return ss / float64(n-ddof)
}

// Std computes the standard deviation with ddof delta degrees of freedom.
func Std(x []float64, ddof int) float64 {
	return math.Sqrt(Variance(x, ddof))
}

// MinMax returns the minimum and maximum values; NaN, NaN when empty.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear
// interpolation between closest ranks.
func Quantile(x []float64, q float64) float64 {
	n := len(x)
	if n == 0 || math.IsNaN(q) {
		return math.NaN()
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	if q <= 0 {
		return cp[0]
	}
	if q >= 1 {
		return cp[n-1]
	}
	rank := q * float64(n-1)
	lower := int(rank)
	weight := rank - float64(lower)
	if lower+1 >= n {
		return cp[lower]
	}
	return cp[lower] + (cp[lower+1]-cp[lower])*weight
}

// Pearson computes the Pearson correlation coefficient. NaN when the slices
// differ in length, have fewer than two points, or either is constant.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n < 2 || len(y) != n {
		return math.NaN()
	}
	mx, my := Mean(x), Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// Spearman computes the rank correlation: Pearson over average ranks.
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}
	return Pearson(Ranks(x), Ranks(y))
}

// Ranks returns 1-based ranks; ties receive the average of their positions.
func Ranks(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && x[idx[j]] == x[idx[i]] {
			j++
		}
		// positions i..j-1 hold equal values
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}
	return ranks
}

// Bin is one histogram bucket covering [Lower, Upper); the last bucket
// also includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits the range of x into bins equal-width buckets.
func Histogram(x []float64, bins int) []Bin {
	if len(x) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := MinMax(x)
	return HistogramRange(x, lo, hi, bins)
}

// HistogramRange buckets x into bins equal-width buckets spanning [lo, hi].
// Values outside the range are ignored. Several samples binned over the same
// range can be compared bucket by bucket.
func HistogramRange(x []float64, lo, hi float64, bins int) []Bin {
	if bins <= 0 || math.IsNaN(lo) || math.IsNaN(hi) || hi < lo {
		return nil
	}
	if lo == hi {
		n := 0
		for _, v := range x {
			if v == lo {
				n++
			}
		}
		return []Bin{{Lower: lo, Upper: hi, Count: n}}
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi
	for _, v := range x {
		if v < lo || v > hi {
			continue
		}
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// Log1p returns log(1+v) for every element.
func Log1p(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log1p(v)
	}
	return out
}

// Summary is the five-number-style description of a numeric sample
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Describe summarises x using the sample standard deviation.
func Describe(x []float64) Summary {
	lo, hi := MinMax(x)
	return Summary{
		Count:  len(x),
		Mean:   Mean(x),
		Std:    Std(x, Sample),
		Min:    lo,
		Median: Median(x),
		Max:    hi,
	}
}
