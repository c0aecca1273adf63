// Package timeseries defines the fixed set of light-curve data channels and
// the channel→series container consumed by feature extractors.
package timeseries

import (
	"fmt"
	"sort"
	"strings"
)

// Channel identifies one raw input series of a light curve.
type Channel string

// The closed enumeration of recognized data channels. Any identifier outside
// this set is rejected at validation time.
const (
	Time              Channel = "time"
	Magnitude         Channel = "magnitude"
	Error             Channel = "error"
	Magnitude2        Channel = "magnitude2"
	AlignedTime       Channel = "aligned_time"
	AlignedMagnitude  Channel = "aligned_magnitude"
	AlignedMagnitude2 Channel = "aligned_magnitude2"
	AlignedError      Channel = "aligned_error"
	AlignedError2     Channel = "aligned_error2"
)

var channels = []Channel{
	Time,
	Magnitude,
	Error,
	Magnitude2,
	AlignedTime,
	AlignedMagnitude,
	AlignedMagnitude2,
	AlignedError,
	AlignedError2,
}

// Channels returns the full enumeration in canonical order. The returned
// slice is a copy and safe to mutate.
func Channels() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

// Valid reports whether c is one of the recognized channels.
func (c Channel) Valid() bool {
	for _, known := range channels {
		if c == known {
			return true
		}
	}
	return false
}

// IsChannelName reports whether name collides with a channel identifier.
// Feature names must never shadow a channel.
func IsChannelName(name string) bool {
	return Channel(name).Valid()
}

// InvalidChannelError reports identifiers outside the fixed enumeration.
type InvalidChannelError struct {
	Names []string
}

func (e *InvalidChannelError) Error() string {
	return fmt.Sprintf("invalid data channels: %s", strings.Join(e.Names, ", "))
}

// ValidateChannels checks every identifier against the enumeration and
// returns an InvalidChannelError listing the offenders, if any.
func ValidateChannels(cs []Channel) error {
	var bad []string
	for _, c := range cs {
		if !c.Valid() {
			bad = append(bad, string(c))
		}
	}
	if len(bad) > 0 {
		return &InvalidChannelError{Names: bad}
	}
	return nil
}

// Data is a channel→series mapping holding the raw observations of a single
// light curve. Series lengths are not required to match across channels;
// aligned channels are expected to be pairwise consistent by construction.
type Data map[Channel][]float64

// Channels returns the channels present in d, in canonical enumeration order.
func (d Data) Channels() []Channel {
	out := make([]Channel, 0, len(d))
	for _, c := range channels {
		if _, ok := d[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Validate rejects channels outside the enumeration and empty series.
func (d Data) Validate() error {
	var bad []string
	for c := range d {
		if !c.Valid() {
			bad = append(bad, string(c))
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return &InvalidChannelError{Names: bad}
	}
	for _, c := range d.Channels() {
		if len(d[c]) == 0 {
			return fmt.Errorf("channel %q has an empty series", c)
		}
	}
	return nil
}

// Has reports whether every channel in cs is present in d.
func (d Data) Has(cs ...Channel) bool {
	for _, c := range cs {
		if _, ok := d[c]; !ok {
			return false
		}
	}
	return true
}
