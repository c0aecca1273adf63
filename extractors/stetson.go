package extractors

import (
	"context"
	"math"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/timeseries"
)

// StetsonK is the robust kurtosis measure of the error-normalized residuals
// around the inverse-variance weighted mean magnitude. For a Gaussian
// distribution it approaches sqrt(2/pi) ≈ 0.798.
type StetsonK struct{}

func (StetsonK) Features() []string { return []string{"StetsonK"} }

func (StetsonK) Data() []timeseries.Channel {
	return []timeseries.Channel{timeseries.Magnitude, timeseries.Error}
}

func (StetsonK) Dependencies() []string         { return nil }
func (StetsonK) Defaults() extractor.Parameters { return nil }

func (StetsonK) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	errs := in.Series(timeseries.Error)

	residuals := stetsonResiduals(mag, errs)
	n := float64(len(residuals))
	var sumAbs, sumSq float64
	for _, r := range residuals {
		sumAbs += math.Abs(r)
		sumSq += r * r
	}
	k := (1 / math.Sqrt(n)) * sumAbs / math.Sqrt(sumSq)
	return map[string]any{"StetsonK": k}, nil
}

// StetsonJ is the two-band variability index over simultaneous observations
// of the same source: the mean signed square root of the residual products
// of the aligned bands.
type StetsonJ struct{}

func (StetsonJ) Features() []string { return []string{"StetsonJ"} }

func (StetsonJ) Data() []timeseries.Channel {
	return []timeseries.Channel{
		timeseries.AlignedMagnitude,
		timeseries.AlignedMagnitude2,
		timeseries.AlignedError,
		timeseries.AlignedError2,
	}
}

func (StetsonJ) Dependencies() []string         { return nil }
func (StetsonJ) Defaults() extractor.Parameters { return nil }

func (StetsonJ) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	sigmaP := stetsonResiduals(
		in.Series(timeseries.AlignedMagnitude),
		in.Series(timeseries.AlignedError),
	)
	sigmaQ := stetsonResiduals(
		in.Series(timeseries.AlignedMagnitude2),
		in.Series(timeseries.AlignedError2),
	)

	var j float64
	for i := range sigmaP {
		p := sigmaP[i] * sigmaQ[i]
		j += sign(p) * math.Sqrt(math.Abs(p))
	}
	j /= float64(len(sigmaP))
	return map[string]any{"StetsonJ": j}, nil
}

// StetsonL describes the synchronous variability of the two bands. It is
// defined directly from the J and K indexes, L = J·K / 0.798, so it is a
// dependent feature instead of recomputing either index.
type StetsonL struct{}

func (StetsonL) Features() []string         { return []string{"StetsonL"} }
func (StetsonL) Data() []timeseries.Channel { return nil }

func (StetsonL) Dependencies() []string {
	return []string{"StetsonJ", "StetsonK"}
}

func (StetsonL) Defaults() extractor.Parameters { return nil }

func (StetsonL) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	j := in.Feature("StetsonJ")
	k := in.Feature("StetsonK")
	return map[string]any{"StetsonL": j * k / 0.798}, nil
}

// stetsonResiduals returns the error-normalized, bias-corrected residuals
// around the inverse-variance weighted mean.
func stetsonResiduals(mag, errs []float64) []float64 {
	var num, den float64
	for i, m := range mag {
		w := 1 / (errs[i] * errs[i])
		num += m * w
		den += w
	}
	weightedMean := num / den

	n := float64(len(mag))
	scale := math.Sqrt(n / (n - 1))
	out := make([]float64, len(mag))
	for i, m := range mag {
		out[i] = scale * (m - weightedMean) / errs[i]
	}
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
