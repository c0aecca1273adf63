package extractors

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/internal/dataset"
	"github.com/quatrope/gofeets/registry"
	"github.com/quatrope/gofeets/timeseries"
)

const eps = 1e-9

// run pushes one extractor through the contract-validating runner and
// returns its single feature value.
func run(t *testing.T, e extractor.Extractor, data timeseries.Data, computed map[string]any, overrides extractor.Parameters) float64 {
	t.Helper()
	r, err := extractor.NewRunner(e, overrides)
	require.NoError(t, err)

	result, err := r.Run(context.Background(), data, computed)
	require.NoError(t, err)
	require.Len(t, result, 1)

	for _, v := range result {
		f, ok := v.(float64)
		require.True(t, ok)
		return f
	}
	return 0
}

func magData(mag ...float64) timeseries.Data {
	return timeseries.Data{timeseries.Magnitude: mag}
}

func TestRegisterAll(t *testing.T) {
	reg := registry.New()
	assert.NotPanics(t, func() { RegisterAll(reg) })
	assert.Len(t, reg.Entries(), len(All()))

	// Every descriptor validates and every feature name is unique.
	seen := make(map[string]bool)
	for _, f := range reg.Features() {
		assert.False(t, seen[f], "feature %q produced twice", f)
		seen[f] = true
	}
	assert.True(t, reg.Has("Mean"))
	assert.True(t, reg.Has("StetsonL"))
}

func TestMeanStd(t *testing.T) {
	d := magData(1, 2, 3, 4)
	assert.InDelta(t, 2.5, run(t, Mean{}, d, nil, nil), eps)
	assert.InDelta(t, math.Sqrt(1.25), run(t, Std{}, d, nil, nil), eps)
}

func TestAmplitude(t *testing.T) {
	mag := make([]float64, 20)
	for i := range mag {
		mag[i] = float64(i + 1)
	}
	// 5% tails of 20 points are the single extremes 1 and 20.
	assert.InDelta(t, 9.5, run(t, Amplitude{}, magData(mag...), nil, nil), eps)
}

func TestPercentAmplitude(t *testing.T) {
	assert.InDelta(t, 0.5, run(t, PercentAmplitude{}, magData(1, 2, 3), nil, nil), eps)
}

func TestMedianAbsDev(t *testing.T) {
	assert.InDelta(t, 1, run(t, MedianAbsDev{}, magData(1, 2, 3, 4, 5), nil, nil), eps)
}

func TestMedianBRP(t *testing.T) {
	// Buffer is a tenth of the range around the median; the outlier at 10
	// is the only point outside it.
	got := run(t, MedianBRP{}, magData(0, 0.01, -0.01, 10), nil, nil)
	assert.InDelta(t, 0.75, got, eps)
}

func TestQ31(t *testing.T) {
	assert.InDelta(t, 2, run(t, Q31{}, magData(1, 2, 3, 4, 5), nil, nil), eps)
}

func TestSkewSymmetric(t *testing.T) {
	assert.InDelta(t, 0, run(t, Skew{}, magData(1, 2, 3, 4, 5), nil, nil), eps)
}

func TestSmallKurtosisNearNormal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	d := dataset.Synthetic(rng, 2000, 15, 1, 100)
	got := run(t, SmallKurtosis{}, d, nil, nil)
	assert.InDelta(t, 0, got, 0.5, "normal samples have near-zero excess kurtosis")
}

func TestGskewSymmetric(t *testing.T) {
	mag := make([]float64, 100)
	for i := range mag {
		mag[i] = float64(i + 1)
	}
	assert.InDelta(t, 0, run(t, Gskew{}, magData(mag...), nil, nil), eps)
}

func TestCon(t *testing.T) {
	t.Run("single run of three outliers", func(t *testing.T) {
		mag := make([]float64, 103)
		for i := 100; i < 103; i++ {
			mag[i] = 100
		}
		got := run(t, Con{}, magData(mag...), nil, nil)
		assert.InDelta(t, 1.0/101.0, got, eps)
	})

	t.Run("series shorter than the run length", func(t *testing.T) {
		got := run(t, Con{}, magData(1, 2), nil, nil)
		assert.Zero(t, got)
	})

	t.Run("consecutive override", func(t *testing.T) {
		mag := make([]float64, 103)
		for i := 100; i < 103; i++ {
			mag[i] = 100
		}
		// Window length 4 can never cover only the three outliers.
		got := run(t, Con{}, magData(mag...), nil, extractor.Parameters{"consecutive": 4})
		assert.Zero(t, got)
	})
}

func TestPairSlopeTrend(t *testing.T) {
	mag := make([]float64, 31)
	for i := range mag {
		mag[i] = float64(i)
	}
	assert.InDelta(t, 29.0/30.0, run(t, PairSlopeTrend{}, magData(mag...), nil, nil), eps)
}

func TestAndersonDarlingExtractor(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	normal := dataset.Synthetic(rng, 500, 15, 1, 100)
	gotNormal := run(t, AndersonDarling{}, normal, nil, nil)
	assert.Greater(t, gotNormal, 0.0)
	assert.Less(t, gotNormal, 1.0)

	bimodal := make([]float64, 0, 200)
	for i := 0; i < 100; i++ {
		bimodal = append(bimodal, -5+0.001*float64(i), 5+0.001*float64(i))
	}
	gotBimodal := run(t, AndersonDarling{}, magData(bimodal...), nil, nil)
	assert.Greater(t, gotBimodal, 0.9, "strong non-normality saturates the logistic")
}

func TestMaxSlope(t *testing.T) {
	d := timeseries.Data{
		timeseries.Time:      {0, 1, 3},
		timeseries.Magnitude: {0, 2, 1},
	}
	assert.InDelta(t, 2, run(t, MaxSlope{}, d, nil, nil), eps)

	// Out-of-order samples give the same answer with timesort on.
	shuffled := timeseries.Data{
		timeseries.Time:      {1, 3, 0},
		timeseries.Magnitude: {2, 1, 0},
	}
	assert.InDelta(t, 2, run(t, MaxSlope{}, shuffled, nil, nil), eps)
}

func TestLinearTrend(t *testing.T) {
	d := timeseries.Data{
		timeseries.Time:      {0, 1, 2, 3},
		timeseries.Magnitude: {1, 3, 5, 7},
	}
	assert.InDelta(t, 2, run(t, LinearTrend{}, d, nil, nil), eps)
}

func TestEtaE(t *testing.T) {
	// For evenly sampled white noise the index concentrates around 2.
	rng := rand.New(rand.NewSource(3))
	n := 2000
	time := make([]float64, n)
	mag := make([]float64, n)
	for i := range time {
		time[i] = float64(i)
		mag[i] = rng.NormFloat64()
	}
	d := timeseries.Data{timeseries.Time: time, timeseries.Magnitude: mag}
	got := run(t, EtaE{}, d, nil, nil)
	assert.InDelta(t, 2, got, 0.5)
}

func TestColor(t *testing.T) {
	d := timeseries.Data{
		timeseries.Magnitude:  {3, 4, 5},
		timeseries.Magnitude2: {1, 2, 3},
	}
	assert.InDelta(t, 2, run(t, Color{}, d, nil, nil), eps)
}

func TestQ31Color(t *testing.T) {
	d := timeseries.Data{
		timeseries.AlignedMagnitude:  {1, 2, 3, 4, 5},
		timeseries.AlignedMagnitude2: {0, 0, 0, 0, 0},
	}
	assert.InDelta(t, 2, run(t, Q31Color{}, d, nil, nil), eps)
}

func TestEtaColorMatchesEtaOnColorCurve(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 200
	time := make([]float64, n)
	mag := make([]float64, n)
	mag2 := make([]float64, n)
	for i := range time {
		time[i] = float64(i) * 1.5
		mag[i] = 15 + rng.NormFloat64()
		mag2[i] = 14 + rng.NormFloat64()
	}
	d := timeseries.Data{
		timeseries.AlignedTime:       time,
		timeseries.AlignedMagnitude:  mag,
		timeseries.AlignedMagnitude2: mag2,
	}
	got := run(t, EtaColor{}, d, nil, nil)
	want := etaIndex(time, colorCurve(mag, mag2))
	assert.InDelta(t, want, got, eps)
}

func TestStetsonK(t *testing.T) {
	// For Gaussian residuals K approaches sqrt(2/pi).
	rng := rand.New(rand.NewSource(13))
	n := 5000
	mag := make([]float64, n)
	errs := make([]float64, n)
	for i := range mag {
		mag[i] = rng.NormFloat64()
		errs[i] = 1
	}
	d := timeseries.Data{timeseries.Magnitude: mag, timeseries.Error: errs}
	assert.InDelta(t, 0.798, run(t, StetsonK{}, d, nil, nil), 0.05)
}

func TestStetsonJIdenticalBands(t *testing.T) {
	// With both bands identical the index reduces to the mean absolute
	// residual, about 0.798 for Gaussian magnitudes.
	rng := rand.New(rand.NewSource(17))
	n := 5000
	mag := make([]float64, n)
	errs := make([]float64, n)
	for i := range mag {
		mag[i] = rng.NormFloat64()
		errs[i] = 1
	}
	d := timeseries.Data{
		timeseries.AlignedMagnitude:  mag,
		timeseries.AlignedMagnitude2: mag,
		timeseries.AlignedError:      errs,
		timeseries.AlignedError2:     errs,
	}
	assert.InDelta(t, 0.798, run(t, StetsonJ{}, d, nil, nil), 0.05)
}

func TestStetsonL(t *testing.T) {
	got := run(t, StetsonL{}, timeseries.Data{}, map[string]any{
		"StetsonJ": 0.8,
		"StetsonK": 0.798,
	}, nil)
	assert.InDelta(t, 0.8, got, eps)
}

func TestMeanVariance(t *testing.T) {
	got := run(t, MeanVariance{}, timeseries.Data{}, map[string]any{
		"Mean": 2.0,
		"Std":  1.0,
	}, nil)
	assert.InDelta(t, 0.5, got, eps)
}

func TestRcs(t *testing.T) {
	got := run(t, Rcs{}, magData(0, 0, 10, 10), map[string]any{
		"Mean": 5.0,
		"Std":  5.0,
	}, nil)
	assert.InDelta(t, 0.5, got, eps)
}

func TestBeyond1Std(t *testing.T) {
	d := timeseries.Data{
		timeseries.Magnitude: {0, 0, 0, 0, 10},
		timeseries.Error:     {1, 1, 1, 1, 1},
	}
	assert.InDelta(t, 0.2, run(t, Beyond1Std{}, d, nil, nil), eps)
}
