package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelValid(t *testing.T) {
	for _, c := range Channels() {
		assert.True(t, c.Valid(), "enumerated channel %q must be valid", c)
	}
	assert.False(t, Channel("flux").Valid())
	assert.False(t, Channel("").Valid())
	assert.False(t, Channel("Magnitude").Valid(), "channel names are case sensitive")
}

func TestChannelsReturnsCopy(t *testing.T) {
	a := Channels()
	a[0] = Channel("mutated")
	b := Channels()
	assert.Equal(t, Time, b[0])
	assert.Len(t, b, 9)
}

func TestIsChannelName(t *testing.T) {
	assert.True(t, IsChannelName("magnitude"))
	assert.True(t, IsChannelName("aligned_error2"))
	assert.False(t, IsChannelName("Mean"))
}

func TestValidateChannels(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		assert.NoError(t, ValidateChannels([]Channel{Time, Magnitude, Error}))
		assert.NoError(t, ValidateChannels(nil))
	})

	t.Run("reports every offender", func(t *testing.T) {
		err := ValidateChannels([]Channel{Time, "flux", Magnitude, "colour"})
		require.Error(t, err)

		var invalid *InvalidChannelError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, []string{"flux", "colour"}, invalid.Names)
	})
}

func TestDataChannels(t *testing.T) {
	d := Data{
		Magnitude: {1, 2},
		Time:      {0, 1},
		Error:     {0.1, 0.1},
	}
	// Canonical enumeration order regardless of map iteration.
	assert.Equal(t, []Channel{Time, Magnitude, Error}, d.Channels())
}

func TestDataValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		d := Data{Time: {0, 1}, Magnitude: {5, 6}}
		assert.NoError(t, d.Validate())
	})

	t.Run("unknown channel", func(t *testing.T) {
		d := Data{Time: {0}, "flux": {1}}
		err := d.Validate()
		var invalid *InvalidChannelError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, []string{"flux"}, invalid.Names)
	})

	t.Run("empty series", func(t *testing.T) {
		d := Data{Magnitude: {}}
		assert.ErrorContains(t, d.Validate(), "empty series")
	})
}

func TestDataHas(t *testing.T) {
	d := Data{Time: {0}, Magnitude: {1}}
	assert.True(t, d.Has(Time))
	assert.True(t, d.Has(Time, Magnitude))
	assert.False(t, d.Has(Time, Error))
	assert.True(t, d.Has())
}
