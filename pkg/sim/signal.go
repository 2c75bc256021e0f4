package sim

import (
	"fmt"
)

type watcher struct {
	mask uint64
	fn   func()
}

// Signal is a bundle of up to 64 wires driven as one value, e.g. an 8 bit
// output port.
type Signal struct {
	sim   *Simulator
	name  string
	width uint
	mask  uint64
	value uint64

	// watchers are one-shot: they are dropped after firing
	watchers []watcher
	fired    []watcher
}

// NewSignal creates a signal of width bits, initially zero
func (s *Simulator) NewSignal(name string, width uint) *Signal {
	if width == 0 || width > 64 {
		panic(fmt.Sprintf("signal %s: unsupported width %d", name, width))
	}

	mask := ^uint64(0)
	if width < 64 {
		mask = (1 << width) - 1
	}

	return &Signal{
		sim:   s,
		name:  name,
		width: width,
		mask:  mask,
	}
}

func (g *Signal) Name() string {
	return g.name
}

func (g *Signal) Width() uint {
	return g.width
}

func (g *Signal) Value() uint64 {
	return g.value
}

// Set drives a new value onto the signal. Bits beyond the signal's width are
// dropped. Tasks waiting on any bit that changed are woken after the current
// event completes.
func (g *Signal) Set(v uint64) {
	v &= g.mask
	changed := g.value ^ v
	if changed == 0 {
		return
	}
	g.value = v

	if len(g.watchers) == 0 {
		return
	}

	fired := g.fired[:0]
	kept := g.watchers[:0]
	for _, w := range g.watchers {
		if w.mask&changed != 0 {
			fired = append(fired, w)
		} else {
			kept = append(kept, w)
		}
	}
	for i := len(kept); i < len(g.watchers); i++ {
		g.watchers[i] = watcher{}
	}
	g.watchers = kept

	for i, w := range fired {
		w.fn()
		fired[i] = watcher{}
	}
	g.fired = fired[:0]
}

// SetBit drives a single bit of the signal
func (g *Signal) SetBit(bit uint, level bool) {
	if level {
		g.Set(g.value | 1<<bit)
	} else {
		g.Set(g.value &^ (1 << bit))
	}
}

// Bit returns a pin referring to one wire of the signal
func (g *Signal) Bit(bit uint) Pin {
	if bit >= g.width {
		panic(fmt.Sprintf("signal %s: bit %d out of range", g.name, bit))
	}
	return Pin{signal: g, bit: bit}
}

func (g *Signal) watch(mask uint64, fn func()) {
	g.watchers = append(g.watchers, watcher{mask: mask, fn: fn})
}

func (g *Signal) String() string {
	return fmt.Sprintf("%s=%#x", g.name, g.value)
}

// Pin is a single wire of a Signal
type Pin struct {
	signal *Signal
	bit    uint
}

// Valid is false for the zero Pin
func (p Pin) Valid() bool {
	return p.signal != nil
}

func (p Pin) mask() uint64 {
	return 1 << p.bit
}

// Level returns true if the wire is high
func (p Pin) Level() bool {
	return p.signal.value&p.mask() != 0
}

// Value returns the wire as 0 or 1
func (p Pin) Value() uint64 {
	return (p.signal.value >> p.bit) & 1
}

// Set drives the wire high or low
func (p Pin) Set(level bool) {
	p.signal.SetBit(p.bit, level)
}

// Signal returns the signal the pin belongs to
func (p Pin) Signal() *Signal {
	return p.signal
}

func (p Pin) Name() string {
	if p.signal.width == 1 {
		return p.signal.name
	}
	return fmt.Sprintf("%s[%d]", p.signal.name, p.bit)
}

func (p Pin) String() string {
	return fmt.Sprintf("%s=%d", p.Name(), p.Value())
}
