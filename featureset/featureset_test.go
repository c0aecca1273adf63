package featureset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Run("records in order with provenance", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.Add("Mean", 1.5, "MeanExt"))
		require.NoError(t, b.Add("Std", 0.5, "StdExt"))

		assert.True(t, b.Has("Mean"))
		assert.False(t, b.Has("Amplitude"))
		assert.Equal(t, map[string]any{"Mean": 1.5, "Std": 0.5}, b.Computed())

		fs := b.Build()
		assert.Equal(t, []string{"Mean", "Std"}, fs.Names())
		assert.Equal(t, 2, fs.Len())

		producer, ok := fs.ProducedBy("Std")
		require.True(t, ok)
		assert.Equal(t, "StdExt", producer)
	})

	t.Run("duplicate feature is refused", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.Add("Mean", 1.0, "First"))

		err := b.Add("Mean", 2.0, "Second")
		var dup *DuplicateFeatureError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "Mean", dup.Feature)
		assert.Equal(t, "Second", dup.Extractor)
		assert.Equal(t, "First", dup.Previous)

		// The original value survives the refused overwrite.
		fs := b.Build()
		v, _ := fs.Float("Mean")
		assert.Equal(t, 1.0, v)
		assert.Equal(t, []string{"Mean"}, fs.Names())
	})

	t.Run("computed snapshot is detached", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.Add("A", 1.0, "X"))
		snap := b.Computed()
		snap["B"] = 2.0
		assert.False(t, b.Has("B"))
	})
}

func TestFeatureSet(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("Mean", 1.5, "MeanExt"))
	require.NoError(t, b.Add("Bins", []float64{1, 2}, "HistExt"))
	fs := b.Build()

	t.Run("scalar access", func(t *testing.T) {
		v, ok := fs.Float("Mean")
		assert.True(t, ok)
		assert.Equal(t, 1.5, v)

		_, ok = fs.Float("Bins")
		assert.False(t, ok, "structured values are not scalars")
		_, ok = fs.Float("Missing")
		assert.False(t, ok)
	})

	t.Run("structured access", func(t *testing.T) {
		v, ok := fs.Value("Bins")
		require.True(t, ok)
		assert.Equal(t, []float64{1, 2}, v)
	})

	t.Run("copies are detached", func(t *testing.T) {
		names := fs.Names()
		names[0] = "mutated"
		assert.Equal(t, "Mean", fs.Names()[0])

		all := fs.All()
		all["Extra"] = 1
		assert.False(t, fs.Has("Extra"))
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "FeatureSet[Mean, Bins]", fs.String())
	})
}
