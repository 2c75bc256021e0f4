package vga

import (
	"github.com/pkg/errors"

	"github.com/sema/vgaharness/pkg/sim"
)

// TinyVGA PMOD wiring of an 8 bit output port
const (
	BitR1    = 0
	BitG1    = 1
	BitB1    = 2
	BitVSync = 3
	BitR0    = 4
	BitG0    = 5
	BitB0    = 6
	BitHSync = 7
)

// PackPMOD encodes 2 bit color samples and sync levels into a PMOD port value
func PackPMOD(r, g, b uint8, hsync, vsync bool) uint8 {
	var v uint8
	v |= (r >> 1 & 1) << BitR1
	v |= (r & 1) << BitR0
	v |= (g >> 1 & 1) << BitG1
	v |= (g & 1) << BitG0
	v |= (b >> 1 & 1) << BitB1
	v |= (b & 1) << BitB0
	if hsync {
		v |= 1 << BitHSync
	}
	if vsync {
		v |= 1 << BitVSync
	}
	return v
}

// Pins names the wires a Grabber observes. Each color slice lists the
// channel's wires most significant first.
type Pins struct {
	HSync sim.Pin
	VSync sim.Pin
	Red   []sim.Pin
	Green []sim.Pin
	Blue  []sim.Pin
}

// PMODPins returns the pins of a PMOD port driven onto bus
func PMODPins(bus *sim.Signal) Pins {
	return Pins{
		HSync: bus.Bit(BitHSync),
		VSync: bus.Bit(BitVSync),
		Red:   []sim.Pin{bus.Bit(BitR1), bus.Bit(BitR0)},
		Green: []sim.Pin{bus.Bit(BitG1), bus.Bit(BitG0)},
		Blue:  []sim.Pin{bus.Bit(BitB1), bus.Bit(BitB0)},
	}
}

// Validate checks that every wire is set and each channel has bits wires
func (p Pins) Validate(bits int) error {
	if !p.HSync.Valid() || !p.VSync.Valid() {
		return errors.New("sync pins not connected")
	}
	for name, wires := range map[string][]sim.Pin{"red": p.Red, "green": p.Green, "blue": p.Blue} {
		if len(wires) != bits {
			return errors.Errorf("%s channel has %d wires, expected %d", name, len(wires), bits)
		}
		for i, w := range wires {
			if !w.Valid() {
				return errors.Errorf("%s channel wire %d not connected", name, i)
			}
		}
	}
	return nil
}

func (p Pins) channel(wires []sim.Pin) uint8 {
	var v uint8
	for _, w := range wires {
		v = v<<1 | uint8(w.Value())
	}
	return v
}
