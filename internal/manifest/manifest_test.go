package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("full request", func(t *testing.T) {
		path := writeManifest(t, `
extract {
  data     = "curve.csv"
  only     = ["Mean", "Std", "Con"]
  exclude  = []
  workers  = 4
  on_error = "collect"

  params "Con" {
    consecutive = 4
  }

  params "MaxSlope" {
    timesort = false
  }
}
`)
		m, err := Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, "curve.csv", m.Data)
		assert.Equal(t, []string{"Mean", "Std", "Con"}, m.Only)
		assert.Empty(t, m.Exclude)
		assert.Equal(t, 4, m.Workers)
		assert.Equal(t, "collect", m.OnError)

		require.Len(t, m.Params, 2)
		// HCL numbers arrive as float64; extractor.Parameters converts.
		consecutive, ok := m.Params["Con"].Int("consecutive")
		require.True(t, ok)
		assert.Equal(t, 4, consecutive)
		timesort, ok := m.Params["MaxSlope"].Bool("timesort")
		require.True(t, ok)
		assert.False(t, timesort)
	})

	t.Run("minimal request", func(t *testing.T) {
		path := writeManifest(t, `
extract {
  data = "curve.csv"
}
`)
		m, err := Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "curve.csv", m.Data)
		assert.Nil(t, m.Only)
		assert.Zero(t, m.Workers)
		assert.Empty(t, m.OnError)
		assert.Empty(t, m.Params)
	})

	t.Run("string and list parameters", func(t *testing.T) {
		path := writeManifest(t, `
extract {
  data = "curve.csv"

  params "Custom" {
    mode  = "fast"
    knots = [1, 2, 3]
  }
}
`)
		m, err := Load(ctx, path)
		require.NoError(t, err)

		params := m.Params["Custom"]
		assert.Equal(t, "fast", params["mode"])
		assert.Equal(t, []any{1.0, 2.0, 3.0}, params["knots"])
	})

	t.Run("missing extract block", func(t *testing.T) {
		path := writeManifest(t, `# nothing here`)
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, "no extract block")
	})

	t.Run("bad on_error", func(t *testing.T) {
		path := writeManifest(t, `
extract {
  data     = "curve.csv"
  on_error = "explode"
}
`)
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, `on_error must be "fail" or "collect"`)
	})

	t.Run("negative workers", func(t *testing.T) {
		path := writeManifest(t, `
extract {
  data    = "curve.csv"
  workers = -2
}
`)
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, "workers must not be negative")
	})

	t.Run("duplicate params block", func(t *testing.T) {
		path := writeManifest(t, `
extract {
  data = "curve.csv"

  params "Con" {
    consecutive = 3
  }

  params "Con" {
    consecutive = 4
  }
}
`)
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, `duplicate params block for "Con"`)
	})

	t.Run("missing data attribute", func(t *testing.T) {
		path := writeManifest(t, `
extract {
  workers = 1
}
`)
		_, err := Load(ctx, path)
		assert.Error(t, err)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.hcl"))
		assert.Error(t, err)
	})
}
