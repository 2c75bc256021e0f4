package tqv

import (
	"github.com/prometheus/common/log"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/sim"
)

// spiHalfCycles is the number of clocks SCK stays at each level
const spiHalfCycles = 2

// SPIDriver accesses registers over the SPI test bus: CS, SCK and MOSI on
// ui_in, MISO on uio_out.
type SPIDriver struct {
	clk    *sim.Clock
	rstN   sim.Pin
	uiIn   *sim.Signal
	uioOut *sim.Signal
	log    log.Logger
}

type SPIOption func(*SPIDriver)

func WithSPILogger(l log.Logger) SPIOption {
	return func(d *SPIDriver) {
		d.log = l
	}
}

func NewSPIDriver(clk *sim.Clock, rstN sim.Pin, uiIn, uioOut *sim.Signal, opts ...SPIOption) *SPIDriver {
	d := &SPIDriver{
		clk:    clk,
		rstN:   rstN,
		uiIn:   uiIn,
		uioOut: uioOut,
		log:    log.Base(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "spi")
	return d
}

func (d *SPIDriver) Reset(t *sim.Task) error {
	d.log.Debugf("reset")
	d.idle()
	pulseReset(t, d.clk, d.rstN)
	return nil
}

func (d *SPIDriver) WriteByteRegister(t *sim.Task, address int, v uint8) error {
	if err := checkAddress(address); err != nil {
		return err
	}
	d.transfer(t, true, console.WidthByte, uint8(address), uint32(v))
	return nil
}

func (d *SPIDriver) WriteWordRegister(t *sim.Task, address int, v uint16) error {
	if err := checkAddress(address); err != nil {
		return err
	}
	d.transfer(t, true, console.WidthHalf, uint8(address), uint32(v))
	return nil
}

func (d *SPIDriver) ReadByteRegister(t *sim.Task, address int) (uint8, error) {
	if err := checkAddress(address); err != nil {
		return 0, err
	}
	return uint8(d.transfer(t, false, console.WidthByte, uint8(address), 0)), nil
}

func (d *SPIDriver) ReadWordRegister(t *sim.Task, address int) (uint16, error) {
	if err := checkAddress(address); err != nil {
		return 0, err
	}
	return uint16(d.transfer(t, false, console.WidthHalf, uint8(address), 0)), nil
}

// idle deasserts CS and parks SCK and MOSI low
func (d *SPIDriver) idle() {
	d.uiIn.SetBit(console.PinCS, true)
	d.uiIn.SetBit(console.PinSCK, false)
	d.uiIn.SetBit(console.PinMOSI, false)
}

func (d *SPIDriver) half(t *sim.Task) {
	t.WaitCycles(d.clk, spiHalfCycles)
}

// transfer runs one transaction and returns the bits read from MISO during
// the data phase
func (d *SPIDriver) transfer(t *sim.Task, write bool, width console.Width, address uint8, data uint32) uint32 {
	header := uint32(width)<<13 | uint32(address&MaxAddress)
	if write {
		header |= 1 << 15
	}
	d.log.Debugf("transfer write=%t width=%s address=%#02x data=%#x", write, width, address, data)

	d.uiIn.SetBit(console.PinCS, false)
	d.half(t)

	for i := 15; i >= 0; i-- {
		d.clockBit(t, header&(1<<uint(i)) != 0)
	}

	var in uint32
	for i := width.Bits() - 1; i >= 0; i-- {
		if d.clockBit(t, data&(1<<uint(i)) != 0) {
			in |= 1 << uint(i)
		}
	}

	d.uiIn.SetBit(console.PinSCK, false)
	d.half(t)
	d.idle()
	d.half(t)
	return in
}

// clockBit shifts out one bit on MOSI and returns MISO as seen just before
// the rising SCK edge
func (d *SPIDriver) clockBit(t *sim.Task, out bool) bool {
	d.uiIn.SetBit(console.PinSCK, false)
	d.uiIn.SetBit(console.PinMOSI, out)
	d.half(t)

	in := d.uioOut.Bit(console.PinMISO).Level()
	d.uiIn.SetBit(console.PinSCK, true)
	d.half(t)
	return in
}
