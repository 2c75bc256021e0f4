package console

import (
	"fmt"

	"github.com/sema/vgaharness/pkg/sim"
)

// Width is the size of a single register access, encoded the way the
// TinyQV peripheral bus encodes data_write_n and data_read_n.
type Width uint8

const (
	WidthByte Width = 0
	WidthHalf Width = 1
	WidthWord Width = 2

	// WidthNone marks an idle bus cycle
	WidthNone Width = 3
)

var widthNames = map[Width]string{
	WidthByte: "byte",
	WidthHalf: "half",
	WidthWord: "word",
	WidthNone: "none",
}

func (w Width) String() string {
	name, ok := widthNames[w]
	if !ok {
		panic(fmt.Sprintf("unable to determine name of width (%d)", w))
	}
	return name
}

// Bits is the number of data bits transferred, zero for WidthNone
func (w Width) Bits() int {
	if w >= WidthNone {
		return 0
	}
	return 8 << w
}

// Mask keeps the bits of a value that fit the width
func (w Width) Mask() uint32 {
	switch w {
	case WidthByte:
		return 0xFF
	case WidthHalf:
		return 0xFFFF
	case WidthWord:
		return 0xFFFFFFFF
	}
	return 0
}

// Port is the console's parallel peripheral bus. A bus master drives
// Address, DataIn and one of WriteN or ReadN away from WidthNone for a single
// clock; the console acts on the rising edge. Read data is valid on DataOut
// while Ready is high.
type Port struct {
	Address *sim.Signal
	DataIn  *sim.Signal
	WriteN  *sim.Signal
	ReadN   *sim.Signal

	DataOut *sim.Signal
	Ready   *sim.Signal
}

func newPort(s *sim.Simulator) *Port {
	p := &Port{
		Address: s.NewSignal("address", 6),
		DataIn:  s.NewSignal("data_in", 32),
		WriteN:  s.NewSignal("data_write_n", 2),
		ReadN:   s.NewSignal("data_read_n", 2),
		DataOut: s.NewSignal("data_out", 32),
		Ready:   s.NewSignal("data_ready", 1),
	}
	p.WriteN.Set(uint64(WidthNone))
	p.ReadN.Set(uint64(WidthNone))
	return p
}

// cycle serves the access pending on the bus, if any
func (p *Port) cycle(c *Console) {
	address := uint8(p.Address.Value())

	if w := Width(p.WriteN.Value()); w != WidthNone {
		c.Write(address, uint32(p.DataIn.Value()), w)
	}

	if w := Width(p.ReadN.Value()); w != WidthNone {
		p.DataOut.Set(uint64(c.Read(address, w)))
		p.Ready.Set(1)
	} else {
		p.Ready.Set(0)
	}
}

func (p *Port) reset() {
	p.DataOut.Set(0)
	p.Ready.Set(0)
}
