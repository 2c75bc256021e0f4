// Package vga reconstructs video frames from raster signals.
//
// A Grabber locks onto the trailing edge of vsync, counts hsync pulses
// through vertical blanking and samples the color wires once per pixel, in
// the middle of each pixel period. It has no notion of the device driving
// the wires; everything it knows comes from a timing.Config.
package vga

import (
	"github.com/prometheus/common/log"

	"github.com/sema/vgaharness/pkg/frame"
	"github.com/sema/vgaharness/pkg/sim"
	"github.com/sema/vgaharness/pkg/timing"
)

// LineCallback is called after every scanline consumed by Grab, blanking
// lines included, with the line index and the number of lines per frame.
type LineCallback func(line, lines int)

type Grabber struct {
	cfg    timing.Config
	pins   Pins
	log    log.Logger
	onLine LineCallback
}

type Option func(*Grabber)

func WithLogger(l log.Logger) Option {
	return func(g *Grabber) {
		g.log = l
	}
}

// WithLineCallback reports acquisition progress
func WithLineCallback(fn LineCallback) Option {
	return func(g *Grabber) {
		g.onLine = fn
	}
}

// New returns a grabber decoding pins according to cfg
func New(cfg timing.Config, pins Pins, opts ...Option) (*Grabber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := pins.Validate(cfg.ColorChannelBits); err != nil {
		return nil, err
	}

	g := &Grabber{
		cfg:  cfg,
		pins: pins,
		log:  log.Base(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("component", "grabber").With("timing", cfg.Name)
	return g, nil
}

func (g *Grabber) Config() timing.Config {
	return g.cfg
}

// Sync suspends t until the trailing edge of a vsync pulse. If vsync is
// already active it returns at the end of the current pulse. Sync waits
// indefinitely if the pulse never comes.
func (g *Grabber) Sync(t *sim.Task) {
	active := bool(g.cfg.VSyncActive)
	t.WaitLevel(g.pins.VSync, active)
	t.WaitLevel(g.pins.VSync, !active)
}

// Grab acquires the next complete frame. Every cell of the returned frame is
// written exactly once. A config that does not match the device produces a
// shifted or garbled frame rather than an error.
func (g *Grabber) Grab(t *sim.Task) *frame.Frame {
	cfg := g.cfg
	f := frame.New(cfg.VisibleColumns, cfg.VisibleLines, cfg.ColorChannelBits)
	hsyncActive := bool(cfg.HSyncActive)
	before, after := cfg.HalfPeriods()
	lines := cfg.ScanLines()

	g.log.Debugf("waiting for vsync")
	g.Sync(t)
	g.log.Debugf("frame start at %s", t.Now())

	for line := 0; line < lines; line++ {
		t.WaitLevel(g.pins.HSync, hsyncActive)
		t.WaitLevel(g.pins.HSync, !hsyncActive)

		if line >= cfg.BlankingLines {
			row := line - cfg.BlankingLines
			t.Wait(cfg.BackPorchDelay)
			for col := 0; col < cfg.VisibleColumns; col++ {
				t.Wait(before)
				f.Set(row, col, frame.RGB{
					g.pins.channel(g.pins.Red),
					g.pins.channel(g.pins.Green),
					g.pins.channel(g.pins.Blue),
				})
				t.Wait(after)
			}
		}

		if g.onLine != nil {
			g.onLine(line, lines)
		}
	}

	g.log.Debugf("frame done at %s", t.Now())
	return f
}
