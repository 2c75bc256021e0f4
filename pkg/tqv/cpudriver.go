package tqv

import (
	"github.com/pkg/errors"
	"github.com/prometheus/common/log"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/sim"
)

// CPUDriver accesses registers by assembling a short program per access and
// running it on a core attached to the peripheral Port. Values travel
// through register a0.
type CPUDriver struct {
	clk  *sim.Clock
	rstN sim.Pin
	port *console.Port
	cpu  *cpu
	log  log.Logger
}

type CPUOption func(*CPUDriver)

func WithCPULogger(l log.Logger) CPUOption {
	return func(d *CPUDriver) {
		d.log = l
	}
}

func NewCPUDriver(clk *sim.Clock, rstN sim.Pin, port *console.Port, opts ...CPUOption) *CPUDriver {
	d := &CPUDriver{
		clk:  clk,
		rstN: rstN,
		port: port,
		log:  log.Base(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "cpu")
	d.cpu = newCPU(clk, port, d.log)
	return d
}

func (d *CPUDriver) Reset(t *sim.Task) error {
	d.log.Debugf("reset")
	d.port.WriteN.Set(uint64(console.WidthNone))
	d.port.ReadN.Set(uint64(console.WidthNone))
	d.cpu.Registers.clear()
	pulseReset(t, d.clk, d.rstN)
	return nil
}

func (d *CPUDriver) WriteByteRegister(t *sim.Task, address int, v uint8) error {
	if err := checkAddress(address); err != nil {
		return err
	}
	var a assembler
	program := a.li(registerA0, uint32(v)).store("SB", registerA0, uint8(address)).halt()
	return d.exec(t, program)
}

func (d *CPUDriver) WriteWordRegister(t *sim.Task, address int, v uint16) error {
	if err := checkAddress(address); err != nil {
		return err
	}
	var a assembler
	program := a.li(registerA0, uint32(v)).store("SH", registerA0, uint8(address)).halt()
	return d.exec(t, program)
}

func (d *CPUDriver) ReadByteRegister(t *sim.Task, address int) (uint8, error) {
	if err := checkAddress(address); err != nil {
		return 0, err
	}
	var a assembler
	program := a.load("LBU", registerA0, uint8(address)).halt()
	if err := d.exec(t, program); err != nil {
		return 0, err
	}
	return uint8(d.cpu.Registers.Read(registerA0)), nil
}

func (d *CPUDriver) ReadWordRegister(t *sim.Task, address int) (uint16, error) {
	if err := checkAddress(address); err != nil {
		return 0, err
	}
	var a assembler
	program := a.load("LHU", registerA0, uint8(address)).halt()
	if err := d.exec(t, program); err != nil {
		return 0, err
	}
	return uint16(d.cpu.Registers.Read(registerA0)), nil
}

func (d *CPUDriver) exec(t *sim.Task, program []byte) error {
	d.cpu.load(program)
	if err := d.cpu.run(t); err != nil {
		return errors.Wrap(err, "register access failed")
	}
	return nil
}
