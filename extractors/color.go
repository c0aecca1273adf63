package extractors

import (
	"context"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/internal/mathx"
	"github.com/quatrope/gofeets/timeseries"
)

// Color is the difference between the mean magnitudes of the two bands.
type Color struct{}

func (Color) Features() []string { return []string{"Color"} }

func (Color) Data() []timeseries.Channel {
	return []timeseries.Channel{timeseries.Magnitude, timeseries.Magnitude2}
}

func (Color) Dependencies() []string         { return nil }
func (Color) Defaults() extractor.Parameters { return nil }

func (Color) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	mean := mathx.Mean(in.Series(timeseries.Magnitude))
	mean2 := mathx.Mean(in.Series(timeseries.Magnitude2))
	return map[string]any{"Color": mean - mean2}, nil
}

// Q31Color is the interquartile range of the color curve built from the two
// aligned bands.
type Q31Color struct{}

func (Q31Color) Features() []string { return []string{"Q31_color"} }

func (Q31Color) Data() []timeseries.Channel {
	return []timeseries.Channel{timeseries.AlignedMagnitude, timeseries.AlignedMagnitude2}
}

func (Q31Color) Dependencies() []string         { return nil }
func (Q31Color) Defaults() extractor.Parameters { return nil }

func (Q31Color) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	color := colorCurve(
		in.Series(timeseries.AlignedMagnitude),
		in.Series(timeseries.AlignedMagnitude2),
	)
	q31 := mathx.Percentile(color, 75) - mathx.Percentile(color, 25)
	return map[string]any{"Q31_color": q31}, nil
}

// EtaColor is the Eta_e variability index applied to the color curve of the
// aligned bands.
type EtaColor struct{}

func (EtaColor) Features() []string { return []string{"Eta_color"} }

func (EtaColor) Data() []timeseries.Channel {
	return []timeseries.Channel{
		timeseries.AlignedMagnitude,
		timeseries.AlignedTime,
		timeseries.AlignedMagnitude2,
	}
}

func (EtaColor) Dependencies() []string         { return nil }
func (EtaColor) Defaults() extractor.Parameters { return nil }

func (EtaColor) Extract(_ context.Context, in extractor.Input) (map[string]any, error) {
	color := colorCurve(
		in.Series(timeseries.AlignedMagnitude),
		in.Series(timeseries.AlignedMagnitude2),
	)
	eta := etaIndex(in.Series(timeseries.AlignedTime), color)
	return map[string]any{"Eta_color": eta}, nil
}

func colorCurve(mag, mag2 []float64) []float64 {
	n := len(mag)
	if len(mag2) < n {
		n = len(mag2)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = mag[i] - mag2[i]
	}
	return out
}
