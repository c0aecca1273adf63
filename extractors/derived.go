package extractors

import (
	"context"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/timeseries"
)

// MeanVariance is the variability index Std/Mean, computed from the already
// available Mean and Std features rather than from the raw magnitudes.
type MeanVariance struct{}

func (MeanVariance) Features() []string           { return []string{"Meanvariance"} }
func (MeanVariance) Data() []timeseries.Channel   { return nil }
func (MeanVariance) Dependencies() []string       { return []string{"Mean", "Std"} }
func (MeanVariance) Defaults() extractor.Parameters { return nil }

func (MeanVariance) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	return map[string]any{"Meanvariance": in.Feature("Std") / in.Feature("Mean")}, nil
}

// Rcs is the range of the cumulative sum of the standardized magnitudes.
// A non-varying series stays close to zero; trends and jumps push the
// cumulative sum away from it.
type Rcs struct{}

func (Rcs) Features() []string { return []string{"Rcs"} }

func (Rcs) Data() []timeseries.Channel {
	return []timeseries.Channel{timeseries.Magnitude}
}

func (Rcs) Dependencies() []string         { return []string{"Mean", "Std"} }
func (Rcs) Defaults() extractor.Parameters { return nil }

func (Rcs) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mag := in.Series(timeseries.Magnitude)
	mean := in.Feature("Mean")
	std := in.Feature("Std")
	scale := 1 / (std * float64(len(mag)))

	sum := (mag[0] - mean) * scale
	min, max := sum, sum
	for _, m := range mag[1:] {
		sum += (m - mean) * scale
		if sum < min {
			min = sum
		}
		if sum > max {
			max = sum
		}
	}
	return map[string]any{"Rcs": max - min}, nil
}
