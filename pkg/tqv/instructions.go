package tqv

import (
	"fmt"
	"strings"

	"github.com/sema/vgaharness/pkg/console"
)

// instructionSize is the length of every encoded instruction:
// [opcode] [register] [immediate low] [immediate high]
const instructionSize = 4

type instruction struct {
	Opcode   uint8
	Mnemonic string
	Cycles   int
	Operands []operand

	// Width is the size of the bus access made by loads and stores
	Width console.Width
}

type operand struct {
	Name string
	Type operandType
}

type operandType int

// Operands for instructions. Every instruction has at most one register and
// one immediate operand, encoded in fixed positions.
const (
	// operandReg is a register taken from the second instruction byte
	operandReg operandType = iota

	// operandImm16 is a 16 bit value taken from the last two bytes,
	// little-endian
	operandImm16

	// operandAddr6 is a peripheral register address, the low 6 bits of the
	// immediate
	operandAddr6
)

var operandTypeNames = map[operandType]string{
	operandReg:   "reg",
	operandImm16: "imm16",
	operandAddr6: "addr6",
}

func (o operandType) String() string {
	name, ok := operandTypeNames[o]
	if !ok {
		panic(fmt.Sprintf("unable to determine name of operand (%d)", o))
	}

	return name
}

func (inst instruction) String() string {
	var operandStrs []string
	for _, op := range inst.Operands {
		operandStrs = append(operandStrs, fmt.Sprintf("%-5s", op.Name))
	}

	return fmt.Sprintf("[%#02x] %-4s %s", inst.Opcode, inst.Mnemonic, strings.Join(operandStrs, " "))
}

// opcodes maps mnemonics back to opcodes for the assembler
var opcodes = func() map[string]uint8 {
	m := make(map[string]uint8, len(instructions))
	for opcode, inst := range instructions {
		m[inst.Mnemonic] = opcode
	}
	return m
}()
