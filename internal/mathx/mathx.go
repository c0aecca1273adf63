// Package mathx holds the small numeric kernel shared by the feature
// extractors: moments, order statistics and a least-squares fit. Percentile
// and variance semantics follow the conventions of the reference feature
// catalogs (population variance, linearly interpolated percentiles).
package mathx

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs. It returns NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance (normalized by N).
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// Std returns the population standard deviation (normalized by N).
func Std(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// SampleStd returns the sample standard deviation (normalized by N-1).
func SampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// WeightedMean returns sum(w*x)/sum(w).
func WeightedMean(xs, weights []float64) float64 {
	var num, den float64
	for i, x := range xs {
		num += x * weights[i]
		den += weights[i]
	}
	return num / den
}

// Median returns the middle value of xs, averaging the two central values
// for even lengths. xs is not modified.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	s := sorted(xs)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Percentile returns the p-th percentile (0..100) of xs using linear
// interpolation between closest ranks. xs is not modified.
func Percentile(xs []float64, p float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	s := sorted(xs)
	if n == 1 {
		return s[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return s[lo]
	}
	frac := rank - float64(lo)
	return s[lo]*(1-frac) + s[hi]*frac
}

// Min returns the smallest element of xs.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Max returns the largest element of xs.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// LinearSlope returns the slope of the least-squares line of y over x.
func LinearSlope(x, y []float64) float64 {
	mx, my := Mean(x), Mean(y)
	var num, den float64
	for i := range x {
		num += (x[i] - mx) * (y[i] - my)
		den += (x[i] - mx) * (x[i] - mx)
	}
	return num / den
}

// SortedByTime returns copies of time and value reordered so that time is
// ascending, keeping the pairing between the two series.
func SortedByTime(time, value []float64) ([]float64, []float64) {
	idx := make([]int, len(time))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return time[idx[a]] < time[idx[b]] })
	t := make([]float64, len(time))
	v := make([]float64, len(value))
	for i, j := range idx {
		t[i] = time[j]
		v[i] = value[j]
	}
	return t, v
}

// AndersonDarling returns the A² statistic of the Anderson–Darling test for
// normality, with the estimated mean and standard deviation of xs as the
// reference distribution.
func AndersonDarling(xs []float64) float64 {
	n := len(xs)
	s := sorted(xs)
	mean := Mean(s)
	std := SampleStd(s)

	a2 := 0.0
	for i := 0; i < n; i++ {
		zi := normCDF((s[i] - mean) / std)
		zni := normCDF((s[n-1-i] - mean) / std)
		a2 += float64(2*i+1) * (math.Log(zi) + math.Log(1-zni))
	}
	return -float64(n) - a2/float64(n)
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

func sorted(xs []float64) []float64 {
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)
	return s
}
