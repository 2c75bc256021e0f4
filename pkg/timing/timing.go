// Package timing describes the video timings the frame grabber decodes.
package timing

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/sema/vgaharness/pkg/sim"
)

// Level is the logic level of a single wire
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Config is the set of parameters needed to decode one class of raster
// signal. Values are copied, never modified.
type Config struct {
	Name string

	// PixelPeriod is the duration of one pixel clock cycle
	PixelPeriod sim.Time

	// HSyncActive and VSyncActive are the levels the sync wires are at
	// during a sync pulse
	HSyncActive Level
	VSyncActive Level

	// VisibleLines is the number of scanlines kept in the frame
	VisibleLines int

	// BlankingLines is the number of hsync pulses between the end of vsync
	// and the first visible scanline
	BlankingLines int

	// VisibleColumns is the number of pixels sampled per visible scanline
	VisibleColumns int

	// BackPorchDelay is the time from the trailing hsync edge to the start
	// of the first visible pixel
	BackPorchDelay sim.Time

	// ColorChannelBits is the number of wires per color channel
	ColorChannelBits int
}

// Validate checks the invariants every usable configuration satisfies
func (c Config) Validate() error {
	switch {
	case c.PixelPeriod <= 0:
		return errors.Errorf("timing %s: pixel period must be positive, got %d", c.Name, c.PixelPeriod)
	case c.VisibleLines <= 0 || c.VisibleColumns <= 0:
		return errors.Errorf("timing %s: visible area must not be empty, got %dx%d", c.Name, c.VisibleColumns, c.VisibleLines)
	case c.BlankingLines < 0:
		return errors.Errorf("timing %s: blanking lines must not be negative, got %d", c.Name, c.BlankingLines)
	case c.BackPorchDelay < 0:
		return errors.Errorf("timing %s: back porch delay must not be negative, got %d", c.Name, c.BackPorchDelay)
	case c.ColorChannelBits < 1 || c.ColorChannelBits > 8:
		return errors.Errorf("timing %s: color channel bits must be within 1-8, got %d", c.Name, c.ColorChannelBits)
	}
	return nil
}

// HalfPeriods splits the pixel period into the delay before a sample is
// taken and the delay after it. The two always add up to PixelPeriod, so an
// odd period does not drift over a scanline.
func (c Config) HalfPeriods() (before, after sim.Time) {
	before = c.PixelPeriod / 2
	return before, c.PixelPeriod - before
}

// MaxSample is the largest value a single channel sample can take
func (c Config) MaxSample() uint8 {
	return uint8(1<<uint(c.ColorChannelBits) - 1)
}

// ScanLines is the number of hsync pulses consumed per frame
func (c Config) ScanLines() int {
	return c.BlankingLines + c.VisibleLines
}

func (c Config) String() string {
	return fmt.Sprintf("%s %dx%d @ %s", c.Name, c.VisibleColumns, c.VisibleLines,
		humanize.SIWithDigits(c.PixelPeriod.Frequency(), 3, "Hz"))
}

var (
	// VGA640x480 decodes the console's 640x480 mode driven by a 24 MHz clock
	VGA640x480 = Config{
		Name:             "vga",
		PixelPeriod:      41666 * sim.Picosecond,
		HSyncActive:      Low,
		VSyncActive:      Low,
		VisibleLines:     480,
		BlankingLines:    32,
		VisibleColumns:   640,
		BackPorchDelay:   47 * 41666 * sim.Picosecond,
		ColorChannelBits: 2,
	}

	// XGA1024x768 decodes the console's 1024x768 mode driven by a 64 MHz clock
	XGA1024x768 = Config{
		Name:             "xga",
		PixelPeriod:      15626 * sim.Picosecond,
		HSyncActive:      Low,
		VSyncActive:      Low,
		VisibleLines:     768,
		BlankingLines:    27,
		VisibleColumns:   1024,
		BackPorchDelay:   151 * 15626 * sim.Picosecond,
		ColorChannelBits: 2,
	}

	// Mini96x56 decodes the console's reduced test mode, small enough to
	// simulate in a fraction of a second
	Mini96x56 = Config{
		Name:             "mini",
		PixelPeriod:      40000 * sim.Picosecond,
		HSyncActive:      Low,
		VSyncActive:      Low,
		VisibleLines:     56,
		BlankingLines:    4,
		VisibleColumns:   96,
		BackPorchDelay:   11 * 40000 * sim.Picosecond,
		ColorChannelBits: 2,
	}
)

var presets = map[string]Config{
	VGA640x480.Name:  VGA640x480,
	XGA1024x768.Name: XGA1024x768,
	Mini96x56.Name:   Mini96x56,
}

// Lookup returns the preset with the given name
func Lookup(name string) (Config, error) {
	c, ok := presets[name]
	if !ok {
		return Config{}, errors.Errorf("unknown timing %q", name)
	}
	return c, nil
}

// Names lists the preset names in alphabetical order
func Names() []string {
	var names []string
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
