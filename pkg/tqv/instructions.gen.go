//go:generate go run ../../instruction-gen/main.go ../../instruction-gen/spec.json ./instructions.gen.go
//go:generate go fmt ./instructions.gen.go

// GENERATED FILE - Run "go generate ./..." to update

package tqv

import "github.com/sema/vgaharness/pkg/console"

var instructions = map[uint8]instruction{
	0x00: {
		Opcode:   0x00,
		Mnemonic: "NOP",
		Cycles:   1,
		Operands: []operand{},
		Width:    console.WidthNone,
	},
	0x01: {
		Opcode:   0x01,
		Mnemonic: "LI",
		Cycles:   1,
		Operands: []operand{
			{Name: "rd", Type: operandReg},
			{Name: "imm16", Type: operandImm16},
		},
		Width: console.WidthNone,
	},
	0x02: {
		Opcode:   0x02,
		Mnemonic: "LUI",
		Cycles:   1,
		Operands: []operand{
			{Name: "rd", Type: operandReg},
			{Name: "imm16", Type: operandImm16},
		},
		Width: console.WidthNone,
	},
	0x10: {
		Opcode:   0x10,
		Mnemonic: "SB",
		Cycles:   2,
		Operands: []operand{
			{Name: "rs", Type: operandReg},
			{Name: "addr6", Type: operandAddr6},
		},
		Width: console.WidthByte,
	},
	0x11: {
		Opcode:   0x11,
		Mnemonic: "SH",
		Cycles:   2,
		Operands: []operand{
			{Name: "rs", Type: operandReg},
			{Name: "addr6", Type: operandAddr6},
		},
		Width: console.WidthHalf,
	},
	0x12: {
		Opcode:   0x12,
		Mnemonic: "SW",
		Cycles:   2,
		Operands: []operand{
			{Name: "rs", Type: operandReg},
			{Name: "addr6", Type: operandAddr6},
		},
		Width: console.WidthWord,
	},
	0x20: {
		Opcode:   0x20,
		Mnemonic: "LBU",
		Cycles:   3,
		Operands: []operand{
			{Name: "rd", Type: operandReg},
			{Name: "addr6", Type: operandAddr6},
		},
		Width: console.WidthByte,
	},
	0x21: {
		Opcode:   0x21,
		Mnemonic: "LHU",
		Cycles:   3,
		Operands: []operand{
			{Name: "rd", Type: operandReg},
			{Name: "addr6", Type: operandAddr6},
		},
		Width: console.WidthHalf,
	},
	0x22: {
		Opcode:   0x22,
		Mnemonic: "LW",
		Cycles:   3,
		Operands: []operand{
			{Name: "rd", Type: operandReg},
			{Name: "addr6", Type: operandAddr6},
		},
		Width: console.WidthWord,
	},
	0xFF: {
		Opcode:   0xFF,
		Mnemonic: "HALT",
		Cycles:   1,
		Operands: []operand{},
		Width:    console.WidthNone,
	},
}
