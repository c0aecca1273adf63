package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quatrope/gofeets/registry"
)

// CycleError reports that the dependency graph over a set of extractors is
// not a DAG. Feature names one feature on the detected cycle; Extractors is
// the cycle path (first and last element coincide).
type CycleError struct {
	Feature    string
	Extractors []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf(
		"cyclic dependency detected involving feature %q: %s",
		e.Feature, strings.Join(e.Extractors, " -> "),
	)
}

// SortByDependencies returns a topologically ordered permutation of entries:
// every extractor appears after all extractors producing features it depends
// on. The order is stable: when several extractors become eligible at once
// they keep their relative order from the input, so identical inputs always
// yield identical output.
//
// It fails with registry.MissingDependencyError when a dependency has no
// producer among the input entries, and with CycleError when no topological
// order exists.
func SortByDependencies(entries []*registry.Entry) ([]*registry.Entry, error) {
	producers := make(map[string]*registry.Entry, len(entries))
	for _, entry := range entries {
		for _, f := range entry.Descriptor.Features {
			producers[f] = entry
		}
	}

	var missing []string
	for _, entry := range entries {
		for _, dep := range entry.Descriptor.Dependencies {
			if _, ok := producers[dep]; !ok {
				missing = append(missing, dep)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &registry.MissingDependencyError{Dependencies: missing}
	}

	g := newGraph()
	for _, entry := range entries {
		g.addNode(entry.Descriptor.Name)
	}
	for _, entry := range entries {
		for _, dep := range entry.Descriptor.Dependencies {
			producer := producers[dep]
			if producer == entry {
				continue // rejected earlier by the descriptor validation
			}
			if err := g.addEdge(producer.Descriptor.Name, entry.Descriptor.Name, dep); err != nil {
				return nil, err
			}
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, cycle
	}

	// Stable Kahn: scan the remaining entries in input order and admit every
	// one whose dependencies are already satisfied; features become visible
	// between passes, not inside one. The graph is acyclic at this point, so
	// each pass admits at least one entry.
	satisfied := make(map[string]bool, len(producers))
	remaining := append([]*registry.Entry(nil), entries...)
	ordered := make([]*registry.Entry, 0, len(entries))

	for len(remaining) > 0 {
		var admitted, deferred []*registry.Entry
		for _, entry := range remaining {
			if depsSatisfied(entry, satisfied) {
				admitted = append(admitted, entry)
			} else {
				deferred = append(deferred, entry)
			}
		}
		if len(admitted) == 0 {
			return nil, &CycleError{Extractors: names(deferred)}
		}
		for _, entry := range admitted {
			for _, f := range entry.Descriptor.Features {
				satisfied[f] = true
			}
		}
		ordered = append(ordered, admitted...)
		remaining = deferred
	}
	return ordered, nil
}

func depsSatisfied(entry *registry.Entry, satisfied map[string]bool) bool {
	for _, dep := range entry.Descriptor.Dependencies {
		if !satisfied[dep] {
			return false
		}
	}
	return true
}

func names(entries []*registry.Entry) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Descriptor.Name
	}
	return out
}
