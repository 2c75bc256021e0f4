// Package console models a memory mapped text console peripheral: a small
// character buffer rendered onto a VGA style raster and driven out through a
// TinyVGA PMOD. Registers are reachable through the SPI test bus on ui_in and
// through a parallel peripheral Port.
//
// The model is clocked by a sim.Clock and advances one pixel per rising
// edge while rst_n is high.
package console

import (
	"github.com/prometheus/common/log"

	"github.com/sema/vgaharness/pkg/frame"
	"github.com/sema/vgaharness/pkg/sim"
	"github.com/sema/vgaharness/pkg/vga"
)

const (
	Rows    = 3
	Columns = 10
	Cells   = Rows * Columns
)

// Register map. Addresses 0 to Cells-1 are character cells.
const (
	RegisterBackground uint8 = 0x20
	RegisterControl    uint8 = 0x21
	RegisterStatus     uint8 = 0x22 // read-only
	RegisterFrame      uint8 = 0x23 // read-only
)

const (
	// DefaultColor is given to characters written with a byte access
	DefaultColor uint8 = 0x3F

	// ControlTextOff hides all characters, leaving the background
	ControlTextOff uint8 = 0x01

	// StatusVBlank and StatusHBlank report the current raster position
	StatusVBlank uint8 = 0x01
	StatusHBlank uint8 = 0x02
)

type cell struct {
	char  uint8
	color uint8
}

// Console is the device model. Its pins are signals on the simulator it was
// created with; the zero level of rst_n holds it in reset.
type Console struct {
	mode Mode
	log  log.Logger

	rstN   *sim.Signal
	uiIn   *sim.Signal
	uoOut  *sim.Signal
	uioOut *sim.Signal
	port   *Port

	cells      [Cells]cell
	background uint8
	control    uint8
	frames     uint8

	// h and v are the raster position of the pixel currently driven
	h, v int

	spi spiTarget
}

type Option func(*Console)

func WithLogger(l log.Logger) Option {
	return func(c *Console) {
		c.log = l
	}
}

// New attaches a console to clk. It panics on an invalid mode.
func New(s *sim.Simulator, clk *sim.Clock, mode Mode, opts ...Option) *Console {
	if err := mode.Validate(); err != nil {
		panic(err)
	}

	c := &Console{
		mode:   mode,
		log:    log.Base(),
		rstN:   s.NewSignal("rst_n", 1),
		uiIn:   s.NewSignal("ui_in", 8),
		uoOut:  s.NewSignal("uo_out", 8),
		uioOut: s.NewSignal("uio_out", 8),
		port:   newPort(s),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "console")

	c.reset()
	clk.OnRising(c.tick)
	return c
}

func (c *Console) Mode() Mode {
	return c.mode
}

// ResetN is the active low reset input
func (c *Console) ResetN() sim.Pin {
	return c.rstN.Bit(0)
}

// UIIn carries the SPI test bus
func (c *Console) UIIn() *sim.Signal {
	return c.uiIn
}

// UOOut is the PMOD video output
func (c *Console) UOOut() *sim.Signal {
	return c.uoOut
}

// UIOOut carries MISO of the SPI test bus
func (c *Console) UIOOut() *sim.Signal {
	return c.uioOut
}

func (c *Console) Port() *Port {
	return c.port
}

// Pins returns the video outputs as seen by a frame grabber
func (c *Console) Pins() vga.Pins {
	return vga.PMODPins(c.uoOut)
}

func (c *Console) reset() {
	for i := range c.cells {
		c.cells[i] = cell{color: DefaultColor}
	}
	c.background = 0
	c.control = 0
	c.frames = 0

	// the first clock out of reset moves to the first visible pixel
	c.h = c.mode.HTotal() - 1
	c.v = c.mode.VTotal() - 1

	c.spi.reset()
	c.port.reset()
	c.uioOut.Set(0)
	c.uoOut.Set(uint64(vga.PackPMOD(0, 0, 0, true, true)))
}

func (c *Console) tick() {
	if !c.ResetN().Level() {
		c.reset()
		return
	}

	c.spi.cycle(c)
	c.port.cycle(c)

	// syncs are registered and lag the color outputs by one clock
	hsync, vsync := c.mode.hsync(c.h), c.mode.vsync(c.v)
	c.advance()
	r, g, b := c.color(c.h, c.v)
	c.uoOut.Set(uint64(vga.PackPMOD(r, g, b, hsync, vsync)))
}

func (c *Console) advance() {
	c.h++
	if c.h < c.mode.HTotal() {
		return
	}
	c.h = 0
	c.v++
	if c.v == c.mode.VTotal() {
		c.v = 0
		c.frames++
	}
}

// color returns the 2 bit channel samples of the pixel at h, v
func (c *Console) color(h, v int) (r, g, b uint8) {
	if !c.mode.visible(h, v) {
		return 0, 0, 0
	}

	color := c.background
	if c.control&ControlTextOff == 0 {
		if i, gx, gy, ok := c.mode.cellAt(h, v); ok {
			cell := c.cells[i]
			if glyphFor(cell.char).set(gx, gy) {
				color = cell.color
			}
		}
	}
	return decodeColor(color)
}

// Write stores v at address as a w sized access. Byte writes to a character
// cell use DefaultColor; wider writes carry the color in bits 8 to 13. Writes
// to read-only or unmapped addresses are ignored.
func (c *Console) Write(address uint8, v uint32, w Width) {
	if w == WidthNone {
		return
	}
	v &= w.Mask()
	c.log.Debugf("write %#02x = %#x (%s)", address, v, w)

	switch {
	case address < Cells:
		color := DefaultColor
		if w != WidthByte {
			color = uint8(v>>8) & 0x3F
		}
		c.cells[address] = cell{char: uint8(v), color: color}
	case address == RegisterBackground:
		c.background = uint8(v) & 0x3F
	case address == RegisterControl:
		c.control = uint8(v) & ControlTextOff
	}
}

// Read returns the register at address. Wide reads of a character cell
// return the color in bits 8 to 13.
func (c *Console) Read(address uint8, w Width) uint32 {
	var v uint32
	switch {
	case address < Cells:
		cell := c.cells[address]
		v = uint32(cell.char)
		if w != WidthByte {
			v |= uint32(cell.color) << 8
		}
	case address == RegisterBackground:
		v = uint32(c.background)
	case address == RegisterControl:
		v = uint32(c.control)
	case address == RegisterStatus:
		v = uint32(c.status())
	case address == RegisterFrame:
		v = uint32(c.frames)
	}
	return v & w.Mask()
}

func (c *Console) status() uint8 {
	var s uint8
	if c.v >= c.mode.VVisible {
		s |= StatusVBlank
	}
	if c.h >= c.mode.HVisible {
		s |= StatusHBlank
	}
	return s
}

// Text returns the characters of all cells, row by row
func (c *Console) Text() string {
	b := make([]byte, Cells)
	for i, cell := range c.cells {
		b[i] = cell.char
	}
	return string(b)
}

// Render draws the visible area from the current register state, without
// running the raster. A frame grabbed from a console whose registers do not
// change equals its Render.
func (c *Console) Render() *frame.Frame {
	f := frame.New(c.mode.HVisible, c.mode.VVisible, 2)
	for y := 0; y < c.mode.VVisible; y++ {
		for x := 0; x < c.mode.HVisible; x++ {
			r, g, b := c.color(x, y)
			f.Set(y, x, frame.RGB{r, g, b})
		}
	}
	return f
}
