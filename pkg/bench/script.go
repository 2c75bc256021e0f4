package bench

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/sema/vgaharness/pkg/sim"
	"github.com/sema/vgaharness/pkg/tqv"
)

// Script is a compiled Lua program driving the console registers. Scripts
// see these globals:
//
//	reset()
//	write_byte(address, value)
//	write_word(address, value)
//	read_byte(address) -> value
//	read_word(address) -> value
//	write_text(offset, text [, color])
//	fill(start, end, value)
//	wait_cycles(n)
//	wait_ns(n)
//	log(message)
type Script struct {
	name  string
	proto *lua.FunctionProto
	log   log.Logger
}

// LoadScript reads and compiles the script at path
func LoadScript(fs afero.Fs, path string) (*Script, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read script %s", path)
	}
	return ParseScript(path, string(src))
}

// ParseScript compiles src. Syntax errors are reported here rather than
// when the script runs.
func ParseScript(name, src string) (*Script, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse script %s", name)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to compile script %s", name)
	}
	return &Script{
		name:  name,
		proto: proto,
		log:   log.Base().With("script", name),
	}, nil
}

func (s *Script) Name() string {
	return s.name
}

// Program returns a Program running the script. clk is the clock
// wait_cycles counts. Every run gets a fresh interpreter.
func (s *Script) Program(clk *sim.Clock) Program {
	return func(t *sim.Task, d tqv.Driver) error {
		L := lua.NewState(lua.Options{SkipOpenLibs: true})
		defer L.Close()

		for _, lib := range []struct {
			name string
			open lua.LGFunction
		}{
			{lua.BaseLibName, lua.OpenBase},
			{lua.StringLibName, lua.OpenString},
			{lua.TabLibName, lua.OpenTable},
			{lua.MathLibName, lua.OpenMath},
		} {
			L.Push(L.NewFunction(lib.open))
			L.Push(lua.LString(lib.name))
			L.Call(1, 0)
		}

		b := &scriptBindings{t: t, d: d, clk: clk, log: s.log}
		for name, fn := range map[string]lua.LGFunction{
			"reset":       b.reset,
			"write_byte":  b.writeByte,
			"write_word":  b.writeWord,
			"read_byte":   b.readByte,
			"read_word":   b.readWord,
			"write_text":  b.writeText,
			"fill":        b.fill,
			"wait_cycles": b.waitCycles,
			"wait_ns":     b.waitNs,
			"log":         b.logMessage,
		} {
			L.SetGlobal(name, L.NewFunction(fn))
		}

		L.Push(L.NewFunctionFromProto(s.proto))
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return errors.Wrapf(err, "script %s failed", s.name)
		}
		return nil
	}
}

type scriptBindings struct {
	t   *sim.Task
	d   tqv.Driver
	clk *sim.Clock
	log log.Logger
}

func (b *scriptBindings) check(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%v", err)
	}
}

// checkRange returns argument n, raising an argument error unless it lies
// within lo and hi
func checkRange(L *lua.LState, n, lo, hi int) int {
	v := L.CheckInt(n)
	if v < lo || v > hi {
		L.ArgError(n, fmt.Sprintf("%d out of range %d to %d", v, lo, hi))
	}
	return v
}

func (b *scriptBindings) reset(L *lua.LState) int {
	b.check(L, b.d.Reset(b.t))
	return 0
}

func (b *scriptBindings) writeByte(L *lua.LState) int {
	address, v := L.CheckInt(1), checkRange(L, 2, 0, math.MaxUint8)
	b.check(L, b.d.WriteByteRegister(b.t, address, uint8(v)))
	return 0
}

func (b *scriptBindings) writeWord(L *lua.LState) int {
	address, v := L.CheckInt(1), checkRange(L, 2, 0, math.MaxUint16)
	b.check(L, b.d.WriteWordRegister(b.t, address, uint16(v)))
	return 0
}

func (b *scriptBindings) readByte(L *lua.LState) int {
	v, err := b.d.ReadByteRegister(b.t, L.CheckInt(1))
	b.check(L, err)
	L.Push(lua.LNumber(v))
	return 1
}

func (b *scriptBindings) readWord(L *lua.LState) int {
	v, err := b.d.ReadWordRegister(b.t, L.CheckInt(1))
	b.check(L, err)
	L.Push(lua.LNumber(v))
	return 1
}

func (b *scriptBindings) writeText(L *lua.LState) int {
	offset, text := L.CheckInt(1), L.CheckString(2)
	if L.GetTop() < 3 {
		b.check(L, WriteText(b.t, b.d, offset, text))
		return 0
	}
	color := uint8(checkRange(L, 3, 0, 0x3F))
	b.check(L, WriteColoredText(b.t, b.d, offset, text, []uint8{color}))
	return 0
}

func (b *scriptBindings) fill(L *lua.LState) int {
	start, end, v := L.CheckInt(1), L.CheckInt(2), checkRange(L, 3, 0, math.MaxUint8)
	b.check(L, Fill(b.t, b.d, start, end, uint8(v)))
	return 0
}

func (b *scriptBindings) waitCycles(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 {
		L.ArgError(1, "negative cycle count")
	}
	b.t.WaitCycles(b.clk, n)
	return 0
}

func (b *scriptBindings) waitNs(L *lua.LState) int {
	n := L.CheckInt64(1)
	if n < 0 {
		L.ArgError(1, "negative duration")
	}
	b.t.Wait(sim.Time(n) * sim.Nanosecond)
	return 0
}

func (b *scriptBindings) logMessage(L *lua.LState) int {
	b.log.Infof("%s: %s", b.t.Now(), L.CheckString(1))
	return 0
}
