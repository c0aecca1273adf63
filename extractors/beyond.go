package extractors

import (
	"context"
	"math"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/internal/mathx"
	"github.com/quatrope/gofeets/timeseries"
)

// Beyond1Std is the fraction of observations farther than one standard
// deviation from the inverse-variance weighted mean magnitude.
type Beyond1Std struct{}

func (Beyond1Std) Features() []string { return []string{"Beyond1Std"} }

func (Beyond1Std) Data() []timeseries.Channel {
	return []timeseries.Channel{timeseries.Magnitude, timeseries.Error}
}

func (Beyond1Std) Dependencies() []string         { return nil }
func (Beyond1Std) Defaults() extractor.Parameters { return nil }

func (Beyond1Std) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	errs := in.Series(timeseries.Error)

	weights := make([]float64, len(errs))
	for i, e := range errs {
		weights[i] = 1 / (e * e)
	}
	weightedMean := mathx.WeightedMean(mag, weights)

	var variance float64
	for _, m := range mag {
		d := m - weightedMean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(mag)))

	var beyond int
	for _, m := range mag {
		if math.Abs(m-weightedMean) > std {
			beyond++
		}
	}
	return map[string]any{"Beyond1Std": float64(beyond) / float64(len(mag))}, nil
}
