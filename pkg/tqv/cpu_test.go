package tqv

import (
	"context"
	"testing"

	"github.com/prometheus/common/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/sim"
)

// runProgram executes program on a core attached to a console that is out
// of reset, and returns the core and the error of the run
func runProgram(t *testing.T, program []byte) (*cpu, *rig, error) {
	r := newRig()
	c := newCPU(r.clk, r.console.Port(), log.Base())
	c.load(program)

	var runErr error
	r.sim.Go("cpu", func(task *sim.Task) error {
		pulseReset(task, r.clk, r.console.ResetN())
		runErr = c.run(task)
		return nil
	})
	require.NoError(t, r.sim.Run(context.Background()))
	return c, r, runErr
}

func TestInstructionTable(t *testing.T) {
	for opcode, inst := range instructions {
		require.Equal(t, opcode, inst.Opcode)
		require.True(t, inst.Cycles >= 1, inst.Mnemonic)
		require.Equal(t, opcode, opcodes[inst.Mnemonic])
	}
	require.Equal(t, console.WidthHalf, instructions[opcodes["SH"]].Width)
	require.Equal(t, console.WidthWord, instructions[opcodes["LW"]].Width)
	require.Equal(t, console.WidthNone, instructions[opcodes["LI"]].Width)
}

func TestAssemblerEncoding(t *testing.T) {
	var a assembler
	program := a.nop().store("SH", registerA1, 0x21).halt()
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00,
		0x11, 0x0B, 0x21, 0x00,
		0xFF, 0x00, 0x00, 0x00,
	}, program)
}

func TestLoadImmediate(t *testing.T) {
	var a assembler
	program := a.
		li(registerT0, 0x1234).
		li(registerT1, 0xDEADBEEF).
		li(registerZero, 0x55).
		emit("LUI", registerS0, 0xAAAA).
		emit("LI", registerS0, 0x0001).
		halt()

	c, _, err := runProgram(t, program)
	require.NoError(t, err)
	require.Equal(t, uint32(0x1234), c.Registers.Read(registerT0))
	require.Equal(t, uint32(0xDEADBEEF), c.Registers.Read(registerT1))
	require.Equal(t, uint32(0), c.Registers.Read(registerZero))
	require.Equal(t, uint32(0xAAAA0001), c.Registers.Read(registerS0))
}

func TestStoresReachPeripheral(t *testing.T) {
	var a assembler
	program := a.
		li(registerA0, 0x3F00|'x').
		store("SB", registerA0, 1).
		store("SH", registerA0, 2).
		li(registerA1, 0xFFFF0C00|'y').
		store("SW", registerA1, 3).
		halt()

	_, r, err := runProgram(t, program)
	require.NoError(t, err)
	require.Equal(t, uint32(console.DefaultColor)<<8|'x', r.console.Read(1, console.WidthHalf))
	require.Equal(t, uint32(0x3F00|'x'), r.console.Read(2, console.WidthHalf))
	require.Equal(t, uint32(0x0C00|'y'), r.console.Read(3, console.WidthHalf))
}

func TestLoadsZeroExtend(t *testing.T) {
	var a assembler
	program := a.
		li(registerA0, 0x1500|'q').
		store("SH", registerA0, 9).
		li(registerA1, 0xFFFFFFFF).
		load("LBU", registerA1, 9).
		li(registerA2, 0xFFFFFFFF).
		load("LHU", registerA2, 9).
		load("LW", registerA3, 9).
		halt()

	c, _, err := runProgram(t, program)
	require.NoError(t, err)
	require.Equal(t, uint32('q'), c.Registers.Read(registerA1))
	require.Equal(t, uint32(0x1500|'q'), c.Registers.Read(registerA2))
	require.Equal(t, uint32(0x1500|'q'), c.Registers.Read(registerA3))
}

func TestIllegalInstruction(t *testing.T) {
	_, _, err := runProgram(t, []byte{0x7E, 0, 0, 0})
	require.Error(t, err)
}

func TestProgramWithoutHalt(t *testing.T) {
	var a assembler
	_, _, err := runProgram(t, a.nop().nop().program)
	require.Error(t, err)
}

func TestLoadWithoutResponse(t *testing.T) {
	r := newRig()
	c := newCPU(r.clk, r.console.Port(), log.Base())
	var a assembler
	c.load(a.load("LBU", registerA0, 0).halt())

	var runErr error
	r.sim.Go("cpu", func(task *sim.Task) error {
		// rst_n is still low, so the console never answers
		runErr = c.run(task)
		return nil
	})
	require.NoError(t, r.sim.Run(context.Background()))
	assert.Error(t, runErr)
}

func TestRegisterNames(t *testing.T) {
	require.Equal(t, "zero", registerZero.String())
	require.Equal(t, "a0", registerA0.String())
	require.Equal(t, "a5", registerA5.String())
	require.Panics(t, func() { _ = register(registerCount).String() })
}
