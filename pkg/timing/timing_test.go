package timing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sema/vgaharness/pkg/sim"
)

func TestPresetsAreValid(t *testing.T) {
	for _, name := range Names() {
		c, err := Lookup(name)
		require.NoError(t, err)
		require.NoError(t, c.Validate(), name)
		require.Equal(t, name, c.Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("ntsc")
	require.Error(t, err)
}

func TestValidateRejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{
			name:   "zero pixel period",
			modify: func(c *Config) { c.PixelPeriod = 0 },
		},
		{
			name:   "no visible lines",
			modify: func(c *Config) { c.VisibleLines = 0 },
		},
		{
			name:   "no visible columns",
			modify: func(c *Config) { c.VisibleColumns = 0 },
		},
		{
			name:   "negative blanking",
			modify: func(c *Config) { c.BlankingLines = -1 },
		},
		{
			name:   "negative back porch",
			modify: func(c *Config) { c.BackPorchDelay = -1 },
		},
		{
			name:   "too many color bits",
			modify: func(c *Config) { c.ColorChannelBits = 9 },
		},
		{
			name:   "no color bits",
			modify: func(c *Config) { c.ColorChannelBits = 0 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := VGA640x480
			tt.modify(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestHalfPeriodsAddUpToPixelPeriod(t *testing.T) {
	for _, period := range []sim.Time{41666, 15626, 41667, 3} {
		c := Config{PixelPeriod: period}
		before, after := c.HalfPeriods()
		require.Equal(t, period, before+after)
		require.True(t, before <= after)
	}
}

func TestMaxSample(t *testing.T) {
	require.Equal(t, uint8(3), VGA640x480.MaxSample())
	require.Equal(t, uint8(255), Config{ColorChannelBits: 8}.MaxSample())
}

func TestString(t *testing.T) {
	require.Equal(t, "vga 640x480 @ 24 MHz", VGA640x480.String())
}
