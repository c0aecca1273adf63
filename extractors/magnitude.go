package extractors

import (
	"context"
	"math"
	"sort"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/internal/mathx"
	"github.com/quatrope/gofeets/timeseries"
)

func magnitudeOnly() []timeseries.Channel {
	return []timeseries.Channel{timeseries.Magnitude}
}

// Mean is the mean magnitude.
type Mean struct{}

func (Mean) Features() []string             { return []string{"Mean"} }
func (Mean) Data() []timeseries.Channel     { return magnitudeOnly() }
func (Mean) Dependencies() []string         { return nil }
func (Mean) Defaults() extractor.Parameters { return nil }

func (Mean) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	return map[string]any{"Mean": mathx.Mean(in.Series(timeseries.Magnitude))}, nil
}

// Std is the standard deviation of the magnitudes.
type Std struct{}

func (Std) Features() []string             { return []string{"Std"} }
func (Std) Data() []timeseries.Channel     { return magnitudeOnly() }
func (Std) Dependencies() []string         { return nil }
func (Std) Defaults() extractor.Parameters { return nil }

func (Std) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	return map[string]any{"Std": mathx.Std(in.Series(timeseries.Magnitude))}, nil
}

// Amplitude is half the difference between the median of the brightest 5%
// and the median of the faintest 5% of observations.
type Amplitude struct{}

func (Amplitude) Features() []string             { return []string{"Amplitude"} }
func (Amplitude) Data() []timeseries.Channel     { return magnitudeOnly() }
func (Amplitude) Dependencies() []string         { return nil }
func (Amplitude) Defaults() extractor.Parameters { return nil }

func (Amplitude) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	n := len(mag)
	k := int(math.Ceil(0.05 * float64(n)))
	if k < 1 {
		k = 1
	}
	sorted := append([]float64(nil), mag...)
	sort.Float64s(sorted)
	amplitude := (mathx.Median(sorted[n-k:]) - mathx.Median(sorted[:k])) / 2
	return map[string]any{"Amplitude": amplitude}, nil
}

// PercentAmplitude is the largest absolute departure from the median
// magnitude, normalized by the median.
type PercentAmplitude struct{}

func (PercentAmplitude) Features() []string             { return []string{"PercentAmplitude"} }
func (PercentAmplitude) Data() []timeseries.Channel     { return magnitudeOnly() }
func (PercentAmplitude) Dependencies() []string         { return nil }
func (PercentAmplitude) Defaults() extractor.Parameters { return nil }

func (PercentAmplitude) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	median := mathx.Median(mag)
	maxDistance := 0.0
	for _, m := range mag {
		if d := math.Abs(m - median); d > maxDistance {
			maxDistance = d
		}
	}
	return map[string]any{"PercentAmplitude": maxDistance / median}, nil
}

// MedianAbsDev is the median of the absolute deviations from the median
// magnitude.
type MedianAbsDev struct{}

func (MedianAbsDev) Features() []string             { return []string{"MedianAbsDev"} }
func (MedianAbsDev) Data() []timeseries.Channel     { return magnitudeOnly() }
func (MedianAbsDev) Dependencies() []string         { return nil }
func (MedianAbsDev) Defaults() extractor.Parameters { return nil }

func (MedianAbsDev) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	median := mathx.Median(mag)
	devs := make([]float64, len(mag))
	for i, m := range mag {
		devs[i] = math.Abs(m - median)
	}
	return map[string]any{"MedianAbsDev": mathx.Median(devs)}, nil
}

// MedianBRP (median buffer range percentage) is the fraction of points
// within a tenth of the magnitude range around the median.
type MedianBRP struct{}

func (MedianBRP) Features() []string             { return []string{"MedianBRP"} }
func (MedianBRP) Data() []timeseries.Channel     { return magnitudeOnly() }
func (MedianBRP) Dependencies() []string         { return nil }
func (MedianBRP) Defaults() extractor.Parameters { return nil }

func (MedianBRP) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	median := mathx.Median(mag)
	amplitude := (mathx.Max(mag) - mathx.Min(mag)) / 10
	count := 0
	for _, m := range mag {
		if m < median+amplitude && m > median-amplitude {
			count++
		}
	}
	return map[string]any{"MedianBRP": float64(count) / float64(len(mag))}, nil
}

// Q31 is the interquartile range of the magnitudes.
type Q31 struct{}

func (Q31) Features() []string             { return []string{"Q31"} }
func (Q31) Data() []timeseries.Channel     { return magnitudeOnly() }
func (Q31) Dependencies() []string         { return nil }
func (Q31) Defaults() extractor.Parameters { return nil }

func (Q31) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	q31 := mathx.Percentile(mag, 75) - mathx.Percentile(mag, 25)
	return map[string]any{"Q31": q31}, nil
}

// Skew is the biased sample skewness of the magnitude distribution.
type Skew struct{}

func (Skew) Features() []string             { return []string{"Skew"} }
func (Skew) Data() []timeseries.Channel     { return magnitudeOnly() }
func (Skew) Dependencies() []string         { return nil }
func (Skew) Defaults() extractor.Parameters { return nil }

func (Skew) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	mean := mathx.Mean(mag)
	var m2, m3 float64
	for _, m := range mag {
		d := m - mean
		m2 += d * d
		m3 += d * d * d
	}
	n := float64(len(mag))
	m2 /= n
	m3 /= n
	return map[string]any{"Skew": m3 / math.Pow(m2, 1.5)}, nil
}

// SmallKurtosis is the kurtosis estimator corrected for small sample sizes.
type SmallKurtosis struct{}

func (SmallKurtosis) Features() []string             { return []string{"SmallKurtosis"} }
func (SmallKurtosis) Data() []timeseries.Channel     { return magnitudeOnly() }
func (SmallKurtosis) Dependencies() []string         { return nil }
func (SmallKurtosis) Defaults() extractor.Parameters { return nil }

func (SmallKurtosis) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	n := float64(len(mag))
	mean := mathx.Mean(mag)
	std := mathx.Std(mag)

	var s float64
	for _, m := range mag {
		z := (m - mean) / std
		s += z * z * z * z
	}
	c1 := n * (n + 1) / ((n - 1) * (n - 2) * (n - 3))
	c2 := 3 * (n - 1) * (n - 1) / ((n - 2) * (n - 3))
	return map[string]any{"SmallKurtosis": c1*s - c2}, nil
}

// Gskew is a median-based measure of the skew: the sum of the medians of the
// 3% tails minus twice the overall median.
type Gskew struct{}

func (Gskew) Features() []string             { return []string{"Gskew"} }
func (Gskew) Data() []timeseries.Channel     { return magnitudeOnly() }
func (Gskew) Dependencies() []string         { return nil }
func (Gskew) Defaults() extractor.Parameters { return nil }

func (Gskew) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	median := mathx.Median(mag)
	f3 := mathx.Percentile(mag, 3)
	f97 := mathx.Percentile(mag, 97)

	var low, high []float64
	for _, m := range mag {
		if m <= f3 {
			low = append(low, m)
		}
		if m >= f97 {
			high = append(high, m)
		}
	}
	gskew := mathx.Median(low) + mathx.Median(high) - 2*median
	return map[string]any{"Gskew": gskew}, nil
}

// Con counts runs of consecutive observations beyond two standard deviations
// from the mean, normalized by the number of windows. The run length is the
// "consecutive" parameter.
type Con struct{}

func (Con) Features() []string         { return []string{"Con"} }
func (Con) Data() []timeseries.Channel { return magnitudeOnly() }
func (Con) Dependencies() []string     { return nil }

func (Con) Defaults() extractor.Parameters {
	return extractor.Parameters{"consecutive": 3}
}

func (Con) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	consecutive, _ := in.Params.Int("consecutive")

	n := len(mag)
	if n < consecutive {
		return map[string]any{"Con": 0.0}, nil
	}
	sigma := mathx.Std(mag)
	mean := mathx.Mean(mag)

	count := 0
	for i := 0; i <= n-consecutive; i++ {
		run := true
		for j := 0; j < consecutive; j++ {
			if math.Abs(mag[i+j]-mean) <= 2*sigma {
				run = false
				break
			}
		}
		if run {
			count++
		}
	}
	return map[string]any{"Con": float64(count) / float64(n-consecutive+1)}, nil
}

// PairSlopeTrend is the normalized balance of rising versus fading pairs
// among the last 30 observations.
type PairSlopeTrend struct{}

func (PairSlopeTrend) Features() []string             { return []string{"PairSlopeTrend"} }
func (PairSlopeTrend) Data() []timeseries.Channel     { return magnitudeOnly() }
func (PairSlopeTrend) Dependencies() []string         { return nil }
func (PairSlopeTrend) Defaults() extractor.Parameters { return nil }

func (PairSlopeTrend) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	last := mag
	if len(last) > 30 {
		last = last[len(last)-30:]
	}
	positive, rest := 0, 0
	for i := 1; i < len(last); i++ {
		if last[i]-last[i-1] > 0 {
			positive++
		} else {
			rest++
		}
	}
	return map[string]any{"PairSlopeTrend": float64(positive-rest) / 30}, nil
}

// AndersonDarling is the Anderson–Darling normality statistic squashed
// through a logistic to the unit interval.
type AndersonDarling struct{}

func (AndersonDarling) Features() []string             { return []string{"AndersonDarling"} }
func (AndersonDarling) Data() []timeseries.Channel     { return magnitudeOnly() }
func (AndersonDarling) Dependencies() []string         { return nil }
func (AndersonDarling) Defaults() extractor.Parameters { return nil }

func (AndersonDarling) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	a2 := mathx.AndersonDarling(mag)
	return map[string]any{"AndersonDarling": 1 / (1 + math.Exp(-10*(a2-0.3)))}, nil
}
