package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/registry"
)

// entry builds a registry entry from bare metadata; ordering never consults
// the extractor implementation.
func entry(name string, features, deps []string) *registry.Entry {
	return &registry.Entry{
		Descriptor: &extractor.Descriptor{
			Name:         name,
			Features:     features,
			Dependencies: deps,
		},
	}
}

func TestSortByDependencies(t *testing.T) {
	t.Run("independent entries keep input order", func(t *testing.T) {
		in := []*registry.Entry{
			entry("C", []string{"c"}, nil),
			entry("A", []string{"a"}, nil),
			entry("B", []string{"b"}, nil),
		}
		out, err := SortByDependencies(in)
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"}, names(out))
	})

	t.Run("dependency chain is reordered", func(t *testing.T) {
		in := []*registry.Entry{
			entry("C", []string{"c"}, []string{"b"}),
			entry("B", []string{"b"}, []string{"a"}),
			entry("A", []string{"a"}, nil),
		}
		out, err := SortByDependencies(in)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, names(out))
	})

	t.Run("diamond keeps sibling order stable", func(t *testing.T) {
		in := []*registry.Entry{
			entry("Top", []string{"top"}, []string{"left", "right"}),
			entry("Right", []string{"right"}, []string{"base"}),
			entry("Left", []string{"left"}, []string{"base"}),
			entry("Base", []string{"base"}, nil),
		}
		out, err := SortByDependencies(in)
		require.NoError(t, err)
		// Right precedes Left because it precedes it in the input.
		assert.Equal(t, []string{"Base", "Right", "Left", "Top"}, names(out))
	})

	t.Run("missing producer", func(t *testing.T) {
		in := []*registry.Entry{
			entry("A", []string{"a"}, []string{"ghost"}),
		}
		_, err := SortByDependencies(in)
		var missing *registry.MissingDependencyError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"ghost"}, missing.Dependencies)
	})

	t.Run("two-node cycle", func(t *testing.T) {
		in := []*registry.Entry{
			entry("A", []string{"a"}, []string{"b"}),
			entry("B", []string{"b"}, []string{"a"}),
		}
		_, err := SortByDependencies(in)
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.NotEmpty(t, cycle.Extractors)
	})

	t.Run("three-node cycle names the path", func(t *testing.T) {
		in := []*registry.Entry{
			entry("A", []string{"a"}, []string{"c"}),
			entry("B", []string{"b"}, []string{"a"}),
			entry("C", []string{"c"}, []string{"b"}),
		}
		_, err := SortByDependencies(in)
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		require.GreaterOrEqual(t, len(cycle.Extractors), 4)
		assert.Equal(t, cycle.Extractors[0], cycle.Extractors[len(cycle.Extractors)-1])
	})

	t.Run("cycle beside an acyclic component", func(t *testing.T) {
		in := []*registry.Entry{
			entry("Free", []string{"free"}, nil),
			entry("A", []string{"a"}, []string{"b"}),
			entry("B", []string{"b"}, []string{"a"}),
		}
		_, err := SortByDependencies(in)
		var cycle *CycleError
		assert.ErrorAs(t, err, &cycle)
	})

	t.Run("empty input", func(t *testing.T) {
		out, err := SortByDependencies(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

// TestSortByDependencies_Random builds random DAGs where each node may only
// depend on earlier-generated nodes, shuffles them, and checks the ordering
// invariants hold.
func TestSortByDependencies_Random(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")

		entries := make([]*registry.Entry, n)
		for i := 0; i < n; i++ {
			var deps []string
			if i > 0 {
				depIdx := rapid.SliceOfDistinct(
					rapid.IntRange(0, i-1),
					func(v int) int { return v },
				).Draw(t, fmt.Sprintf("deps%d", i))
				for _, j := range depIdx {
					deps = append(deps, fmt.Sprintf("f%d", j))
				}
			}
			entries[i] = entry(
				fmt.Sprintf("E%d", i),
				[]string{fmt.Sprintf("f%d", i)},
				deps,
			)
		}

		perm := rapid.Permutation(entries).Draw(t, "perm")
		out, err := SortByDependencies(perm)
		require.NoError(t, err)
		require.Len(t, out, n)

		produced := make(map[string]int, n)
		for i, e := range out {
			for _, f := range e.Descriptor.Features {
				produced[f] = i
			}
		}
		for i, e := range out {
			for _, dep := range e.Descriptor.Dependencies {
				require.Less(t, produced[dep], i,
					"dependency %q of %q must be produced earlier", dep, e.Descriptor.Name)
			}
		}

		// Determinism: re-sorting the same permutation gives the same order.
		again, err := SortByDependencies(perm)
		require.NoError(t, err)
		assert.Equal(t, names(out), names(again))
	})
}
