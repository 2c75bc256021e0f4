package tqv

import (
	"encoding/binary"
	"fmt"
)

// assembler builds programs for the core, one instruction per call
type assembler struct {
	program []byte
}

func (a *assembler) emit(mnemonic string, reg register, imm uint16) *assembler {
	opcode, ok := opcodes[mnemonic]
	if !ok {
		panic(fmt.Sprintf("unknown mnemonic %s", mnemonic))
	}
	var raw [instructionSize]byte
	raw[0] = opcode
	raw[1] = uint8(reg)
	binary.LittleEndian.PutUint16(raw[2:], imm)
	a.program = append(a.program, raw[:]...)
	return a
}

func (a *assembler) nop() *assembler {
	return a.emit("NOP", registerZero, 0)
}

// li loads a 32 bit constant, using LUI only when the upper half is needed
func (a *assembler) li(rd register, v uint32) *assembler {
	if v > 0xFFFF {
		a.emit("LUI", rd, uint16(v>>16))
	} else {
		a.emit("LUI", rd, 0)
	}
	return a.emit("LI", rd, uint16(v))
}

func (a *assembler) store(mnemonic string, rs register, address uint8) *assembler {
	return a.emit(mnemonic, rs, uint16(address))
}

func (a *assembler) load(mnemonic string, rd register, address uint8) *assembler {
	return a.emit(mnemonic, rd, uint16(address))
}

func (a *assembler) halt() []byte {
	a.emit("HALT", registerZero, 0)
	return a.program
}
