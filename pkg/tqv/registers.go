package tqv

import (
	"fmt"
)

type register uint8

// RV32E register file. x0 reads as zero and ignores writes.
const (
	registerZero register = 0
	registerRA   register = 1
	registerSP   register = 2
	registerGP   register = 3
	registerTP   register = 4
	registerT0   register = 5
	registerT1   register = 6
	registerT2   register = 7
	registerS0   register = 8
	registerS1   register = 9
	registerA0   register = 10
	registerA1   register = 11
	registerA2   register = 12
	registerA3   register = 13
	registerA4   register = 14
	registerA5   register = 15
)

const registerCount = 16

var registerNames = map[register]string{
	registerZero: "zero",
	registerRA:   "ra",
	registerSP:   "sp",
	registerGP:   "gp",
	registerTP:   "tp",
	registerT0:   "t0",
	registerT1:   "t1",
	registerT2:   "t2",
	registerS0:   "s0",
	registerS1:   "s1",
	registerA0:   "a0",
	registerA1:   "a1",
	registerA2:   "a2",
	registerA3:   "a3",
	registerA4:   "a4",
	registerA5:   "a5",
}

func (r register) String() string {
	name, ok := registerNames[r]
	if !ok {
		panic(fmt.Sprintf("unable to determine name of register (%d)", r))
	}

	return name
}

type registers struct {
	// data holds x0 to x15. data[0] is never written.
	data [registerCount]uint32
}

func newRegisters() *registers {
	return &registers{}
}

func (r *registers) Read(reg register) uint32 {
	return r.data[reg]
}

func (r *registers) Write(reg register, v uint32) {
	if reg == registerZero {
		return
	}
	r.data[reg] = v
}

// WriteLower replaces the low 16 bits of reg, keeping the upper half
func (r *registers) WriteLower(reg register, v uint16) {
	r.Write(reg, r.Read(reg)&0xFFFF0000|uint32(v))
}

func (r *registers) clear() {
	r.data = [registerCount]uint32{}
}
