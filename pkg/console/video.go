package console

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sema/vgaharness/pkg/sim"
)

// Mode describes the raster the console generates. All horizontal values
// are in pixel clocks, all vertical values in lines. Syncs are active low.
type Mode struct {
	Name string

	// ClockPeriod is the pixel clock period the mode is designed for
	ClockPeriod sim.Time

	HVisible    int
	HFrontPorch int
	HSync       int
	HBackPorch  int

	VVisible    int
	VFrontPorch int
	VSync       int
	VBackPorch  int

	// Scale magnifies each 8x16 character cell
	Scale int
}

var (
	// ModeVGA is 640x480 at 60 Hz, slightly overclocked to 24 MHz
	ModeVGA = Mode{
		Name:        "vga",
		ClockPeriod: 41666 * sim.Picosecond,
		HVisible:    640,
		HFrontPorch: 16,
		HSync:       96,
		HBackPorch:  48,
		VVisible:    480,
		VFrontPorch: 10,
		VSync:       2,
		VBackPorch:  33,
		Scale:       2,
	}

	// ModeXGA is 1024x768 at 60 Hz, slightly underclocked to 64 MHz
	ModeXGA = Mode{
		Name:        "xga",
		ClockPeriod: 15626 * sim.Picosecond,
		HVisible:    1024,
		HFrontPorch: 24,
		HSync:       136,
		HBackPorch:  152,
		VVisible:    768,
		VFrontPorch: 3,
		VSync:       6,
		VBackPorch:  28,
		Scale:       3,
	}

	// ModeMini is a reduced raster that fits the text area at scale one
	ModeMini = Mode{
		Name:        "mini",
		ClockPeriod: 40000 * sim.Picosecond,
		HVisible:    96,
		HFrontPorch: 4,
		HSync:       8,
		HBackPorch:  12,
		VVisible:    56,
		VFrontPorch: 2,
		VSync:       2,
		VBackPorch:  5,
		Scale:       1,
	}
)

var modes = map[string]Mode{
	ModeVGA.Name:  ModeVGA,
	ModeXGA.Name:  ModeXGA,
	ModeMini.Name: ModeMini,
}

// LookupMode returns the mode with the given name
func LookupMode(name string) (Mode, error) {
	m, ok := modes[name]
	if !ok {
		return Mode{}, errors.Errorf("unknown video mode %q", name)
	}
	return m, nil
}

// HTotal is the number of pixel clocks per line
func (m Mode) HTotal() int {
	return m.HVisible + m.HFrontPorch + m.HSync + m.HBackPorch
}

// VTotal is the number of lines per frame
func (m Mode) VTotal() int {
	return m.VVisible + m.VFrontPorch + m.VSync + m.VBackPorch
}

// FrameClocks is the number of pixel clocks per frame
func (m Mode) FrameClocks() int {
	return m.HTotal() * m.VTotal()
}

func (m Mode) Validate() error {
	switch {
	case m.ClockPeriod < 2:
		return errors.Errorf("mode %s: clock period too short", m.Name)
	case m.HVisible <= 0 || m.VVisible <= 0:
		return errors.Errorf("mode %s: visible area must not be empty", m.Name)
	case m.HFrontPorch < 0 || m.HBackPorch < 1 || m.VFrontPorch < 0 || m.VBackPorch < 1:
		return errors.Errorf("mode %s: invalid porches", m.Name)
	case m.HSync < 1 || m.VSync < 1:
		return errors.Errorf("mode %s: sync pulses must last at least one unit", m.Name)
	case m.Scale < 1:
		return errors.Errorf("mode %s: scale must be positive", m.Name)
	case textWidth*m.Scale > m.HVisible || textHeight*m.Scale > m.VVisible:
		return errors.Errorf("mode %s: text area does not fit the visible area", m.Name)
	}
	return nil
}

// hsync returns the registered level of hsync for counter position h
func (m Mode) hsync(h int) bool {
	start := m.HVisible + m.HFrontPorch
	return !(h >= start && h < start+m.HSync)
}

// vsync returns the registered level of vsync for line v
func (m Mode) vsync(v int) bool {
	start := m.VVisible + m.VFrontPorch
	return !(v >= start && v < start+m.VSync)
}

func (m Mode) visible(h, v int) bool {
	return h < m.HVisible && v < m.VVisible
}

// textOrigin is the top left visible pixel of the centred text area
func (m Mode) textOrigin() (x, y int) {
	return (m.HVisible - textWidth*m.Scale) / 2, (m.VVisible - textHeight*m.Scale) / 2
}

// cellAt maps a visible pixel to a character cell index and the glyph
// pixel it shows. ok is false outside the text area.
func (m Mode) cellAt(x, y int) (cell, gx, gy int, ok bool) {
	ox, oy := m.textOrigin()
	x, y = x-ox, y-oy
	if x < 0 || y < 0 || x >= textWidth*m.Scale || y >= textHeight*m.Scale {
		return 0, 0, 0, false
	}
	x, y = x/m.Scale, y/m.Scale
	cell = (y/cellHeight)*Columns + x/cellWidth
	return cell, x % cellWidth, y % cellHeight, true
}

func (m Mode) String() string {
	return fmt.Sprintf("%s %dx%d (%dx%d total)", m.Name, m.HVisible, m.VVisible, m.HTotal(), m.VTotal())
}
