package extractors

import (
	"context"
	"math"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/internal/mathx"
	"github.com/quatrope/gofeets/timeseries"
)

func magnitudeTime() []timeseries.Channel {
	return []timeseries.Channel{timeseries.Magnitude, timeseries.Time}
}

// MaxSlope is the largest absolute magnitude change per unit time between
// successive observations. The "timesort" parameter reorders the series by
// time first.
type MaxSlope struct{}

func (MaxSlope) Features() []string         { return []string{"MaxSlope"} }
func (MaxSlope) Data() []timeseries.Channel { return magnitudeTime() }
func (MaxSlope) Dependencies() []string     { return nil }

func (MaxSlope) Defaults() extractor.Parameters {
	return extractor.Parameters{"timesort": true}
}

func (MaxSlope) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	time := in.Series(timeseries.Time)
	if timesort, _ := in.Params.Bool("timesort"); timesort {
		time, mag = mathx.SortedByTime(time, mag)
	}

	maxSlope := math.Inf(-1)
	for i := 1; i < len(mag); i++ {
		slope := math.Abs(mag[i]-mag[i-1]) / (time[i] - time[i-1])
		if slope > maxSlope {
			maxSlope = slope
		}
	}
	return map[string]any{"MaxSlope": maxSlope}, nil
}

// LinearTrend is the slope of the least-squares line fitted to magnitude
// over time.
type LinearTrend struct{}

func (LinearTrend) Features() []string             { return []string{"LinearTrend"} }
func (LinearTrend) Data() []timeseries.Channel     { return magnitudeTime() }
func (LinearTrend) Dependencies() []string         { return nil }
func (LinearTrend) Defaults() extractor.Parameters { return nil }

func (LinearTrend) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	time := in.Series(timeseries.Time)
	return map[string]any{"LinearTrend": mathx.LinearSlope(time, mag)}, nil
}

// EtaE is the von Neumann variability index generalized for unevenly
// sampled observations, weighting each successive pair by its time gap.
type EtaE struct{}

func (EtaE) Features() []string             { return []string{"Eta_e"} }
func (EtaE) Data() []timeseries.Channel     { return magnitudeTime() }
func (EtaE) Dependencies() []string         { return nil }
func (EtaE) Defaults() extractor.Parameters { return nil }

func (EtaE) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	time := in.Series(timeseries.Time)
	return map[string]any{"Eta_e": etaIndex(time, mag)}, nil
}

// etaIndex is shared by Eta_e and Eta_color: both apply the same weighted
// index, one to the magnitude series and one to the color curve.
func etaIndex(time, value []float64) float64 {
	n := len(time)
	weights := make([]float64, n-1)
	var s1, s2 float64
	for i := 0; i < n-1; i++ {
		dt := time[i+1] - time[i]
		weights[i] = 1 / (dt * dt)
		dv := value[i+1] - value[i]
		s1 += weights[i] * dv * dv
		s2 += weights[i]
	}
	wMean := mathx.Mean(weights)
	sigma2 := mathx.Variance(value)
	span := time[n-1] - time[0]
	return wMean * span * span * s1 / (sigma2 * s2 * float64(n) * float64(n))
}
