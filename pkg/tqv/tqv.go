// Package tqv drives the registers of a TinyQV peripheral from simulation
// tasks.
//
// Two drivers share the Driver interface: SPIDriver speaks the SPI test bus
// a peripheral exposes when tested on its own, CPUDriver runs each access as
// a short program on a minimal load/store core wired to the peripheral bus,
// the way the peripheral is reached once integrated.
package tqv

import (
	"github.com/pkg/errors"

	"github.com/sema/vgaharness/pkg/sim"
)

// MaxAddress is the highest peripheral register address
const MaxAddress = 0x3F

// ErrAddress is returned for register addresses outside 0 to MaxAddress
var ErrAddress = errors.New("register address out of range")

// Driver accesses peripheral registers. Every call suspends t for the
// duration of the bus transaction.
type Driver interface {
	// Reset pulses rst_n and leaves the bus idle
	Reset(t *sim.Task) error

	WriteByteRegister(t *sim.Task, address int, v uint8) error
	WriteWordRegister(t *sim.Task, address int, v uint16) error
	ReadByteRegister(t *sim.Task, address int) (uint8, error)
	ReadWordRegister(t *sim.Task, address int) (uint16, error)
}

const (
	// resetCycles is how long rst_n is held low
	resetCycles = 10
)

func checkAddress(address int) error {
	if address < 0 || address > MaxAddress {
		return errors.Wrapf(ErrAddress, "address %#x", address)
	}
	return nil
}

// pulseReset holds rstN low for resetCycles and waits one more cycle after
// releasing it
func pulseReset(t *sim.Task, clk *sim.Clock, rstN sim.Pin) {
	rstN.Set(false)
	t.WaitCycles(clk, resetCycles)
	rstN.Set(true)
	t.WaitCycles(clk, 1)
}
