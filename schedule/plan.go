// Package schedule turns registry state into executable plans: it derives
// the dependency graph over registered extractors, topologically orders it,
// and computes the minimal ordered extractor list for a request.
package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quatrope/gofeets/registry"
	"github.com/quatrope/gofeets/timeseries"
)

// InvalidRequestError reports a malformed planning request, such as
// overlapping only/exclude sets.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid extraction request: %s", e.Reason)
}

// DataRequiredError reports that producing a requested feature needs data
// channels the request did not make available.
type DataRequiredError struct {
	Extractor string
	Feature   string
	Missing   []timeseries.Channel
}

func (e *DataRequiredError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		missing[i] = string(c)
	}
	return fmt.Sprintf(
		"feature %q requires extractor %q, which needs unavailable data channels: %s",
		e.Feature, e.Extractor, strings.Join(missing, ", "),
	)
}

// Plan is a dependency-respecting ordered list of extractors answering one
// request. It is immutable, scoped to the registry snapshot it was computed
// from, and must not be reused after the request's filters change.
type Plan struct {
	entries  []*registry.Entry
	features []string
	data     []timeseries.Channel
}

// Extractors returns the plan entries in execution order.
func (p *Plan) Extractors() []*registry.Entry {
	return append([]*registry.Entry(nil), p.entries...)
}

// Len returns the number of extractors in the plan.
func (p *Plan) Len() int {
	return len(p.entries)
}

// Names returns the extractor names in execution order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.entries))
	for i, entry := range p.entries {
		out[i] = entry.Descriptor.Name
	}
	return out
}

// Features returns every feature the plan produces, in execution order.
func (p *Plan) Features() []string {
	return append([]string(nil), p.features...)
}

// RequiredData returns the union of the plan's data channel requirements,
// in canonical channel order.
func (p *Plan) RequiredData() []timeseries.Channel {
	return append([]timeseries.Channel(nil), p.data...)
}

func (p *Plan) String() string {
	return fmt.Sprintf("Plan[%s]", strings.Join(p.Names(), ", "))
}

// New computes the execution plan for a request against the current registry
// state. data lists the available channels; only restricts the features that
// must be produced (nil means every feature reachable from data); exclude
// removes features unless they are needed as dependencies of a non-excluded
// feature.
//
// The plan is computed from an immutable snapshot of the registry taken at
// invocation time, so concurrent registry mutation never affects it, and the
// computation is idempotent: identical arguments against an unchanged
// registry yield an identical ordered plan.
func New(reg *registry.Registry, data []timeseries.Channel, only, exclude []string) (*Plan, error) {
	if err := timeseries.ValidateChannels(data); err != nil {
		return nil, err
	}
	if overlap := intersect(only, exclude); len(overlap) > 0 {
		return nil, &InvalidRequestError{
			Reason: fmt.Sprintf("features in both only and exclude: %s", strings.Join(overlap, ", ")),
		}
	}

	snap := snapshot(reg.Entries())
	if err := snap.checkKnown(only); err != nil {
		return nil, err
	}
	if err := snap.checkKnown(exclude); err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(exclude))
	for _, f := range exclude {
		excluded[f] = true
	}

	// Target features: the explicit only-set, or everything producible from
	// the available data minus the exclusions.
	var targets []string
	if only != nil {
		targets = only
	} else {
		for _, entry := range snap.entries {
			if !entry.Descriptor.RequiresData(data) {
				continue
			}
			for _, f := range entry.Descriptor.Features {
				if !excluded[f] {
					targets = append(targets, f)
				}
			}
		}
	}

	// Transitive closure: pull in the producer of every target feature and,
	// recursively, of every dependency. An excluded feature's producer is
	// admitted only when this walk reaches it as a dependency.
	needed := make(map[*registry.Entry]bool)
	queue := append([]string(nil), targets...)
	for len(queue) > 0 {
		feature := queue[0]
		queue = queue[1:]

		entry, ok := snap.byFeature[feature]
		if !ok {
			return nil, &registry.FeatureNotFoundError{Features: []string{feature}}
		}
		if needed[entry] {
			continue
		}
		if !entry.Descriptor.RequiresData(data) {
			return nil, &DataRequiredError{
				Extractor: entry.Descriptor.Name,
				Feature:   feature,
				Missing:   missingChannels(entry.Descriptor.Data, data),
			}
		}
		needed[entry] = true
		queue = append(queue, entry.Descriptor.Dependencies...)
	}

	// Keep registration order before sorting so the stable topological sort
	// is deterministic for a given registry state.
	var selected []*registry.Entry
	for _, entry := range snap.entries {
		if needed[entry] {
			selected = append(selected, entry)
		}
	}

	ordered, err := SortByDependencies(selected)
	if err != nil {
		return nil, err
	}

	plan := &Plan{entries: ordered}
	for _, entry := range ordered {
		plan.features = append(plan.features, entry.Descriptor.Features...)
	}
	required := make(map[timeseries.Channel]bool)
	for _, entry := range ordered {
		for _, c := range entry.Descriptor.Data {
			required[c] = true
		}
	}
	for _, c := range timeseries.Channels() {
		if required[c] {
			plan.data = append(plan.data, c)
		}
	}
	return plan, nil
}

// regSnapshot is the immutable registry view a single plan is computed from.
type regSnapshot struct {
	entries   []*registry.Entry
	byFeature map[string]*registry.Entry
}

func snapshot(entries []*registry.Entry) *regSnapshot {
	snap := &regSnapshot{
		entries:   entries,
		byFeature: make(map[string]*registry.Entry),
	}
	for _, entry := range entries {
		for _, f := range entry.Descriptor.Features {
			snap.byFeature[f] = entry
		}
	}
	return snap
}

func (s *regSnapshot) checkKnown(features []string) error {
	var unknown []string
	for _, f := range features {
		if _, ok := s.byFeature[f]; !ok {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &registry.FeatureNotFoundError{Features: unknown}
	}
	return nil
}

func intersect(a, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, s := range a {
		inA[s] = true
	}
	var out []string
	for _, s := range b {
		if inA[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func missingChannels(required, available []timeseries.Channel) []timeseries.Channel {
	have := make(map[timeseries.Channel]bool, len(available))
	for _, c := range available {
		have[c] = true
	}
	var out []timeseries.Channel
	for _, c := range required {
		if !have[c] {
			out = append(out, c)
		}
	}
	return out
}
