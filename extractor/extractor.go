// Package extractor defines the authoring contract for feature extractors:
// the Extractor interface, its static Descriptor, and the contract-validating
// Runner that wraps a single extractor invocation.
//
// An extractor is a pure function of its declared inputs. It receives exactly
// the data channels and dependency features it declared, computes one or more
// named features, and returns a mapping whose key set must equal its declared
// feature set. Everything else (ordering, concurrency, failure handling) is
// the engine's problem.
package extractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/quatrope/gofeets/timeseries"
)

// Parameters maps a parameter name to its value. Extractors declare defaults;
// callers may override individual values per run.
type Parameters map[string]any

// Float reads a numeric parameter, accepting the numeric types an override
// may arrive as (manifest values decode to float64 or int).
func (p Parameters) Float(name string) (float64, bool) {
	switch v := p[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Int reads an integer parameter.
func (p Parameters) Int(name string) (int, bool) {
	switch v := p[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Bool reads a boolean parameter.
func (p Parameters) Bool(name string) (bool, bool) {
	v, ok := p[name].(bool)
	return v, ok
}

// clone returns a shallow copy so merged parameter sets never alias the
// extractor's declared defaults.
func (p Parameters) clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Input carries the resolved arguments of one extractor invocation: only the
// declared data channels, the declared dependency features, and the merged
// parameters.
type Input struct {
	Data     map[timeseries.Channel][]float64
	Features map[string]any
	Params   Parameters
}

// Series returns the named data channel. The runner guarantees declared
// channels are present, so a missing channel here is a programming error in
// the extractor's own declaration.
func (in Input) Series(c timeseries.Channel) []float64 {
	return in.Data[c]
}

// Feature returns a dependency feature as float64. Structured (non-scalar)
// dependency values must be read from in.Features directly.
func (in Input) Feature(name string) float64 {
	v, _ := toFloat(in.Features[name])
	return v
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

// Extractor is the authoring interface. Implementations must be safe for
// concurrent use: Extract may run in parallel with other extractors and must
// not mutate shared state.
type Extractor interface {
	// Features returns the names of the features this extractor produces.
	// Must be non-empty, unique, and not collide with channel names.
	Features() []string

	// Data returns the data channels the extractor requires.
	Data() []timeseries.Channel

	// Dependencies returns features produced by other extractors that must
	// be computed first.
	Dependencies() []string

	// Defaults returns the default parameter values. May be nil.
	Defaults() Parameters

	// Extract computes the declared features from the resolved input.
	Extract(ctx context.Context, in Input) (map[string]any, error)
}

// fault is an internal scheduling fault: a declared dependency or data
// channel was absent at execution time. It indicates a planner or engine
// bug, never user error, and must not be swallowed.
type fault struct {
	Extractor string
	Kind      string // "feature" or "channel"
	Missing   string
}

func (e *fault) Error() string {
	return fmt.Sprintf(
		"internal scheduling fault: extractor %q invoked without declared %s %q",
		e.Extractor, e.Kind, e.Missing,
	)
}

// IsFault reports whether err is an internal scheduling fault raised by a
// Runner during input assembly.
func IsFault(err error) bool {
	var f *fault
	return errors.As(err, &f)
}
