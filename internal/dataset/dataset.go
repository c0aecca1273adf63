// Package dataset loads observation series from CSV files and generates
// synthetic light curves for tests and examples.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"

	"github.com/quatrope/gofeets/timeseries"
)

// LoadCSV reads a CSV file whose header row names the channels of each
// column. Every column must be a known channel name and every cell a float.
func LoadCSV(path string) (timeseries.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	data, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}
	return data, nil
}

// ReadCSV parses CSV observation data from r. The first record is the
// header; each header field must name a channel.
func ReadCSV(r io.Reader) (timeseries.Data, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	channels := make([]timeseries.Channel, len(header))
	for i, name := range header {
		ch := timeseries.Channel(name)
		if !ch.Valid() {
			return nil, fmt.Errorf("column %d: unknown channel %q", i+1, name)
		}
		channels[i] = ch
	}

	data := make(timeseries.Data, len(channels))
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		for i, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", row, header[i], err)
			}
			data[channels[i]] = append(data[channels[i]], v)
		}
	}
	if row == 1 {
		return nil, fmt.Errorf("no observation rows")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// Synthetic builds a random light curve with the given number of
// observations. Magnitudes are normally distributed around mean with the
// given standard deviation, times are uniform over [0, span) and sorted,
// and errors are small positive jitter. The rng makes curves reproducible.
func Synthetic(rng *rand.Rand, size int, mean, std, span float64) timeseries.Data {
	time := make([]float64, size)
	mag := make([]float64, size)
	errs := make([]float64, size)
	for i := range time {
		time[i] = rng.Float64() * span
		mag[i] = mean + rng.NormFloat64()*std
		errs[i] = 0.001 + rng.Float64()*0.01
	}
	sort.Float64s(time)

	return timeseries.Data{
		timeseries.Time:      time,
		timeseries.Magnitude: mag,
		timeseries.Error:     errs,
	}
}

// SyntheticAligned extends Synthetic with a second band and the aligned
// channels, as produced by cross-matching two bands of the same source.
func SyntheticAligned(rng *rand.Rand, size int, mean, std, span float64) timeseries.Data {
	data := Synthetic(rng, size, mean, std, span)

	mag2 := make([]float64, size)
	errs2 := make([]float64, size)
	for i := range mag2 {
		mag2[i] = mean + rng.NormFloat64()*std
		errs2[i] = 0.001 + rng.Float64()*0.01
	}
	data[timeseries.Magnitude2] = mag2

	data[timeseries.AlignedTime] = data[timeseries.Time]
	data[timeseries.AlignedMagnitude] = data[timeseries.Magnitude]
	data[timeseries.AlignedMagnitude2] = mag2
	data[timeseries.AlignedError] = data[timeseries.Error]
	data[timeseries.AlignedError2] = errs2
	return data
}
