package tqv

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/common/log"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/sim"
)

// maxSteps bounds a single program run. Driver programs are straight line
// code; running this long means the program lost its HALT.
const maxSteps = 1024

// cpu is a minimal load/store core. It has no data memory: loads and stores
// go straight to the peripheral bus, one access per instruction.
type cpu struct {
	Registers      *registers
	Program        []byte
	ProgramCounter uint16

	clk  *sim.Clock
	port *console.Port
	log  log.Logger
}

func newCPU(clk *sim.Clock, port *console.Port, l log.Logger) *cpu {
	return &cpu{
		Registers: newRegisters(),
		clk:       clk,
		port:      port,
		log:       l,
	}
}

// load replaces the program and rewinds the program counter. Registers keep
// their values.
func (c *cpu) load(program []byte) {
	c.Program = program
	c.ProgramCounter = 0
}

// run executes the loaded program on t until HALT
func (c *cpu) run(t *sim.Task) error {
	for step := 0; step < maxSteps; step++ {
		halted, err := c.cycle(t)
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
	return errors.Errorf("program did not halt within %d instructions", maxSteps)
}

// cycle fetches and executes one instruction
func (c *cpu) cycle(t *sim.Task) (bool, error) {
	pc := c.ProgramCounter
	if int(pc)+instructionSize > len(c.Program) {
		return false, errors.Errorf("program counter %#04x outside program", pc)
	}
	raw := c.Program[pc : pc+instructionSize]
	inst, ok := instructions[raw[0]]
	if !ok {
		return false, errors.Errorf("illegal instruction %#02x at %#04x", raw[0], pc)
	}
	c.ProgramCounter += instructionSize

	c.log.Debugf("Execute %#04x %-20s %s", pc, inst.String(), c.reprOperandValues(inst, raw))

	switch inst.Mnemonic {
	case "NOP":
		// Intentionally left blank
	case "HALT":
		t.WaitCycles(c.clk, inst.Cycles)
		return true, nil
	case "LI":
		// LI $RD $IMM; $RD[15:0]=$IMM
		c.Registers.WriteLower(c.reg(inst.Operands[0], raw), c.imm(inst.Operands[1], raw))
	case "LUI":
		// LUI $RD $IMM; $RD=$IMM<<16
		c.Registers.Write(c.reg(inst.Operands[0], raw), uint32(c.imm(inst.Operands[1], raw))<<16)
	case "SB", "SH", "SW":
		// S* $RS $ADDR; bus[$ADDR]=$RS
		v := c.Registers.Read(c.reg(inst.Operands[0], raw))
		c.store(t, c.addr(inst.Operands[1], raw), v&inst.Width.Mask(), inst.Width)
		t.WaitCycles(c.clk, inst.Cycles-1)
		return false, nil
	case "LBU", "LHU", "LW":
		// L* $RD $ADDR; $RD=bus[$ADDR]
		v, err := c.fetch(t, c.addr(inst.Operands[1], raw), inst.Width)
		if err != nil {
			return false, err
		}
		c.Registers.Write(c.reg(inst.Operands[0], raw), v)
		t.WaitCycles(c.clk, inst.Cycles-1)
		return false, nil
	default:
		return false, errors.Errorf("instruction %s not implemented", inst.Mnemonic)
	}

	t.WaitCycles(c.clk, inst.Cycles)
	return false, nil
}

// store drives a write onto the peripheral bus for one clock
func (c *cpu) store(t *sim.Task, address uint8, v uint32, w console.Width) {
	c.port.Address.Set(uint64(address))
	c.port.DataIn.Set(uint64(v))
	c.port.WriteN.Set(uint64(w))
	t.WaitCycles(c.clk, 1)
	c.port.WriteN.Set(uint64(console.WidthNone))
}

// fetch drives a read onto the peripheral bus for one clock and returns the
// data the peripheral answered with
func (c *cpu) fetch(t *sim.Task, address uint8, w console.Width) (uint32, error) {
	c.port.Address.Set(uint64(address))
	c.port.ReadN.Set(uint64(w))
	t.WaitCycles(c.clk, 1)
	c.port.ReadN.Set(uint64(console.WidthNone))

	if c.port.Ready.Value() == 0 {
		return 0, errors.Errorf("no response to %s read of %#02x", w, address)
	}
	return uint32(c.port.DataOut.Value()) & w.Mask(), nil
}

func (c *cpu) reg(op operand, raw []byte) register {
	assertOperandType(op, operandReg)
	r := register(raw[1])
	if r >= registerCount {
		panic(fmt.Sprintf("register x%d does not exist", r))
	}
	return r
}

func (c *cpu) imm(op operand, raw []byte) uint16 {
	assertOperandType(op, operandImm16, operandAddr6)
	return binary.LittleEndian.Uint16(raw[2:4])
}

func (c *cpu) addr(op operand, raw []byte) uint8 {
	assertOperandType(op, operandAddr6)
	return uint8(c.imm(op, raw)) & MaxAddress
}

func (c *cpu) reprOperandValues(inst instruction, raw []byte) string {
	var builder strings.Builder
	for _, op := range inst.Operands {
		var value string
		switch op.Type {
		case operandReg:
			r := c.reg(op, raw)
			value = fmt.Sprintf("%s=%#x", r, c.Registers.Read(r))
		case operandImm16:
			value = fmt.Sprintf("%#04x", c.imm(op, raw))
		case operandAddr6:
			value = fmt.Sprintf("%#02x", c.addr(op, raw))
		}
		fmt.Fprintf(&builder, "%-5s= %-12s ", op.Name, value)
	}

	return builder.String()
}

func assertOperandType(op operand, expected ...operandType) {
	for _, e := range expected {
		if op.Type == e {
			return
		}
	}

	panic(fmt.Sprintf("unexpected operand type (%s) of operand: expected one of type %s", op.Type.String(), expected))
}
