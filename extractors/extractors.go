// Package extractors is the built-in feature library: single-band moment
// and shape statistics, slope/trend features, two-band color features, the
// Stetson variability indexes, and a few features derived from other
// features. Each extractor is a small pure type implementing
// extractor.Extractor; the engine supplies exactly the channels and
// dependency features an extractor declares.
package extractors

import (
	"fmt"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/registry"
)

// All returns one instance of every built-in extractor, in a stable order
// that registers dependency producers before their consumers' declaration
// (not required by the lazy registry, but keeps plans tidy).
func All() []extractor.Extractor {
	return []extractor.Extractor{
		Mean{},
		Std{},
		Amplitude{},
		PercentAmplitude{},
		MedianAbsDev{},
		MedianBRP{},
		Q31{},
		Skew{},
		SmallKurtosis{},
		Gskew{},
		Con{},
		PairSlopeTrend{},
		AndersonDarling{},
		MaxSlope{},
		LinearTrend{},
		EtaE{},
		Beyond1Std{},
		StetsonK{},
		Color{},
		Q31Color{},
		EtaColor{},
		StetsonJ{},
		StetsonL{},
		MeanVariance{},
		Rcs{},
	}
}

// RegisterAll registers the whole built-in library. The library is
// statically consistent, so a registration failure can only mean the target
// registry already owns one of its feature names; that is a programming
// error and panics.
func RegisterAll(reg *registry.Registry) {
	for _, e := range All() {
		if err := reg.Register(e); err != nil {
			panic(fmt.Sprintf("extractors: registering built-in library: %v", err))
		}
	}
}
