// Package featureset holds the result container of an extraction run: an
// ordered, immutable feature→value mapping with provenance back to the
// extractor that produced each feature.
package featureset

import (
	"fmt"
	"strings"
)

// DuplicateFeatureError reports an attempt to record a feature name that is
// already present. The planner guarantees every feature has exactly one
// producer, so hitting this is a fatal internal invariant violation and the
// builder refuses rather than silently overwriting.
type DuplicateFeatureError struct {
	Feature   string
	Extractor string
	Previous  string
}

func (e *DuplicateFeatureError) Error() string {
	return fmt.Sprintf(
		"internal invariant violation: feature %q from extractor %q already recorded by %q",
		e.Feature, e.Extractor, e.Previous,
	)
}

// FeatureSet is the read-only result of an extraction run. Features keep the
// order in which they were recorded (the plan's execution order).
type FeatureSet struct {
	names      []string
	values     map[string]any
	provenance map[string]string
}

// Names returns the feature names in recording order.
func (fs *FeatureSet) Names() []string {
	return append([]string(nil), fs.names...)
}

// Len returns the number of features.
func (fs *FeatureSet) Len() int {
	return len(fs.names)
}

// Value returns the value of a feature and whether it is present.
func (fs *FeatureSet) Value(name string) (any, bool) {
	v, ok := fs.values[name]
	return v, ok
}

// Float returns a scalar feature value. It returns false when the feature is
// absent or not numeric.
func (fs *FeatureSet) Float(name string) (float64, bool) {
	switch v := fs.values[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Has reports whether the feature was produced.
func (fs *FeatureSet) Has(name string) bool {
	_, ok := fs.values[name]
	return ok
}

// ProducedBy returns the name of the extractor that produced the feature,
// for diagnostics.
func (fs *FeatureSet) ProducedBy(name string) (string, bool) {
	e, ok := fs.provenance[name]
	return e, ok
}

// All returns a copy of the full feature→value mapping.
func (fs *FeatureSet) All() map[string]any {
	out := make(map[string]any, len(fs.values))
	for k, v := range fs.values {
		out[k] = v
	}
	return out
}

func (fs *FeatureSet) String() string {
	return fmt.Sprintf("FeatureSet[%s]", strings.Join(fs.names, ", "))
}

// Builder accumulates features as extractors complete. It is not safe for
// concurrent use; the engine merges wave results sequentially.
type Builder struct {
	fs *FeatureSet
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{fs: &FeatureSet{
		values:     make(map[string]any),
		provenance: make(map[string]string),
	}}
}

// Add records one feature value with its producing extractor.
func (b *Builder) Add(feature string, value any, producer string) error {
	if prev, exists := b.fs.provenance[feature]; exists {
		return &DuplicateFeatureError{Feature: feature, Extractor: producer, Previous: prev}
	}
	b.fs.names = append(b.fs.names, feature)
	b.fs.values[feature] = value
	b.fs.provenance[feature] = producer
	return nil
}

// Has reports whether the feature is already recorded.
func (b *Builder) Has(feature string) bool {
	_, ok := b.fs.values[feature]
	return ok
}

// Computed returns a snapshot of the values recorded so far, used to feed
// dependency features into later waves.
func (b *Builder) Computed() map[string]any {
	out := make(map[string]any, len(b.fs.values))
	for k, v := range b.fs.values {
		out[k] = v
	}
	return out
}

// Build seals the accumulated features into an immutable FeatureSet. The
// builder must not be used afterwards.
func (b *Builder) Build() *FeatureSet {
	fs := b.fs
	b.fs = nil
	return fs
}
