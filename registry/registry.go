// Package registry maps feature names to the extractors that produce them.
//
// A Registry is an explicit instance owned by the caller; there is no
// process-wide registry. It validates registration-time invariants (feature
// uniqueness, well-formed descriptors) and leaves dependency integrity to
// planning time by default, so extractors may be registered in any order.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/timeseries"
)

// Entry pairs a registered extractor with its validated descriptor.
type Entry struct {
	Descriptor *extractor.Descriptor
	Extractor  extractor.Extractor
}

// Registry owns the feature→extractor mapping. Reads are frequent and
// cheap; mutation happens only through Register and Unregister.
type Registry struct {
	mu        sync.RWMutex
	byFeature map[string]*Entry
	entries   []*Entry // registration order, drives plan determinism
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byFeature: make(map[string]*Entry)}
}

// Register adds an extractor. It fails when the extractor's metadata is
// invalid (extractor.BadDefinitionError) or when any produced feature is
// already owned by another registered extractor (AlreadyRegisteredError).
// Declared dependencies are NOT checked here: they are validated when a
// plan is computed, so registration order does not matter.
func (r *Registry) Register(e extractor.Extractor) error {
	return r.register(e, false)
}

// RegisterStrict is Register with eager dependency validation: every
// declared dependency must already have a registered producer.
func (r *Registry) RegisterStrict(e extractor.Extractor) error {
	return r.register(e, true)
}

func (r *Registry) register(e extractor.Extractor, strict bool) error {
	desc, err := extractor.Describe(e)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var taken []string
	for _, f := range desc.Features {
		if _, exists := r.byFeature[f]; exists {
			taken = append(taken, f)
		}
	}
	if len(taken) > 0 {
		sort.Strings(taken)
		return &AlreadyRegisteredError{Features: taken}
	}

	if strict {
		var missing []string
		for _, dep := range desc.Dependencies {
			if _, ok := r.byFeature[dep]; !ok {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return &MissingDependencyError{Dependencies: missing}
		}
	}

	entry := &Entry{Descriptor: desc, Extractor: e}
	for _, f := range desc.Features {
		r.byFeature[f] = entry
	}
	r.entries = append(r.entries, entry)
	return nil
}

// Unregister removes an extractor and all of its produced features. The
// extractor is identified by its descriptor name. Removing a producer that
// other registered extractors depend on is allowed; the broken dependency
// surfaces at planning time.
func (r *Registry) Unregister(e extractor.Extractor) error {
	desc, err := extractor.Describe(e)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, entry := range r.entries {
		if entry.Descriptor.Name == desc.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("extractor %q is not registered", desc.Name)
	}

	for _, f := range r.entries[idx].Descriptor.Features {
		delete(r.byFeature, f)
	}
	r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
	return nil
}

// ExtractorOf returns the entry producing the given feature.
func (r *Registry) ExtractorOf(feature string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byFeature[feature]
	if !ok {
		return nil, &FeatureNotFoundError{Features: []string{feature}}
	}
	return entry, nil
}

// Has reports whether some registered extractor produces the feature.
func (r *Registry) Has(feature string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byFeature[feature]
	return ok
}

// Entries returns a snapshot of all registered entries in registration
// order. Mutating the registry afterwards does not affect the snapshot.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Entry(nil), r.entries...)
}

// Features returns every registered feature name, in the order its producer
// was registered (and declaration order within one extractor).
func (r *Registry) Features() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byFeature))
	for _, entry := range r.entries {
		out = append(out, entry.Descriptor.Features...)
	}
	return out
}

// FromData returns the entries whose required channels are all contained in
// available, in registration order. Identifiers outside the channel
// enumeration are rejected.
func (r *Registry) FromData(available []timeseries.Channel) ([]*Entry, error) {
	if err := timeseries.ValidateChannels(available); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for _, entry := range r.entries {
		if entry.Descriptor.RequiresData(available) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// FromFeatures returns the entries producing any of the requested features,
// in registration order and without duplicates. Every requested feature must
// have a producer.
func (r *Registry) FromFeatures(features []string) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	selected := make(map[*Entry]struct{})
	for _, f := range features {
		entry, ok := r.byFeature[f]
		if !ok {
			missing = append(missing, f)
			continue
		}
		selected[entry] = struct{}{}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &FeatureNotFoundError{Features: missing}
	}

	var out []*Entry
	for _, entry := range r.entries {
		if _, ok := selected[entry]; ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

// AlreadyRegisteredError reports features whose producer is already present.
type AlreadyRegisteredError struct {
	Features []string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("features are already registered: %s", strings.Join(e.Features, ", "))
}

// FeatureNotFoundError reports requested features with no registered producer.
type FeatureNotFoundError struct {
	Features []string
}

func (e *FeatureNotFoundError) Error() string {
	return fmt.Sprintf("features not found: %s", strings.Join(e.Features, ", "))
}

// MissingDependencyError reports declared dependencies with no registered
// producer.
type MissingDependencyError struct {
	Dependencies []string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("dependencies not found: %s", strings.Join(e.Dependencies, ", "))
}
