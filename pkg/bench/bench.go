// Package bench wires a console, a register driver and a frame grabber onto
// one simulator, and runs test programs against them.
package bench

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/common/log"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/frame"
	"github.com/sema/vgaharness/pkg/sim"
	"github.com/sema/vgaharness/pkg/tqv"
	"github.com/sema/vgaharness/pkg/vga"
)

// Program drives the console registers before a frame is acquired. It runs
// inside the bench task, right after reset.
type Program func(t *sim.Task, d tqv.Driver) error

type Bench struct {
	setup   Setup
	backend Backend
	log     log.Logger
	onLine  vga.LineCallback

	sim     *sim.Simulator
	clk     *sim.Clock
	console *console.Console
	driver  tqv.Driver
	grabber *vga.Grabber
}

type Option func(*Bench)

func WithLogger(l log.Logger) Option {
	return func(b *Bench) {
		b.log = l
	}
}

// WithBackend selects the register driver, BackendSPI by default
func WithBackend(backend Backend) Option {
	return func(b *Bench) {
		b.backend = backend
	}
}

// WithLineCallback reports acquisition progress
func WithLineCallback(fn vga.LineCallback) Option {
	return func(b *Bench) {
		b.onLine = fn
	}
}

func New(setup Setup, opts ...Option) (*Bench, error) {
	b := &Bench{
		setup:   setup,
		backend: BackendSPI,
		log:     log.Base(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With("setup", setup.Name)

	if err := b.backend.Validate(); err != nil {
		return nil, err
	}
	if err := setup.Mode.Validate(); err != nil {
		return nil, errors.Wrapf(err, "setup %s", setup.Name)
	}

	b.sim = sim.New(sim.WithLogger(b.log))
	b.clk = sim.NewClock(b.sim.NewSignal("clk", 1), setup.Mode.ClockPeriod)
	b.console = console.New(b.sim, b.clk, setup.Mode, console.WithLogger(b.log))

	switch b.backend {
	case BackendSPI:
		b.driver = tqv.NewSPIDriver(b.clk, b.console.ResetN(), b.console.UIIn(), b.console.UIOOut(),
			tqv.WithSPILogger(b.log))
	case BackendCPU:
		b.driver = tqv.NewCPUDriver(b.clk, b.console.ResetN(), b.console.Port(),
			tqv.WithCPULogger(b.log))
	}

	grabberOpts := []vga.Option{vga.WithLogger(b.log)}
	if b.onLine != nil {
		grabberOpts = append(grabberOpts, vga.WithLineCallback(b.onLine))
	}
	grabber, err := vga.New(setup.Timing, b.console.Pins(), grabberOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "setup %s", setup.Name)
	}
	b.grabber = grabber

	b.clk.Start()
	return b, nil
}

func (b *Bench) Setup() Setup {
	return b.setup
}

// Clock is the console clock, e.g. for scripts counting cycles
func (b *Bench) Clock() *sim.Clock {
	return b.clk
}

// Console gives access to the device model, e.g. to render the expected
// frame from its registers
func (b *Bench) Console() *console.Console {
	return b.console
}

// Now is the simulated time so far
func (b *Bench) Now() sim.Time {
	return b.sim.Now()
}

// Run resets the console, runs program and acquires frames consecutive
// frames. Every frame must equal the one before it, as the console output
// does not change once the program is done. The last frame is returned.
//
// Run only gives up when ctx is done.
func (b *Bench) Run(ctx context.Context, program Program, frames int) (*frame.Frame, error) {
	if frames < 1 {
		return nil, errors.Errorf("invalid frame count %d", frames)
	}

	var grabbed *frame.Frame
	start := b.sim.Now()
	b.sim.Go("bench", func(t *sim.Task) error {
		if err := b.driver.Reset(t); err != nil {
			return errors.Wrap(err, "reset failed")
		}
		if program != nil {
			if err := program(t, b.driver); err != nil {
				return errors.Wrap(err, "program failed")
			}
		}
		b.log.Debugf("program done at %s", t.Now())

		for i := 0; i < frames; i++ {
			f := b.grabber.Grab(t)
			if grabbed != nil {
				if err := frame.Compare(f, grabbed); err != nil {
					return errors.Wrapf(err, "frame %d differs from frame %d", i, i-1)
				}
			}
			grabbed = f
		}
		return nil
	})

	if err := b.sim.Run(ctx); err != nil {
		return grabbed, err
	}
	b.log.Infof("acquired %d frame(s) of %s in %s simulated time (%d events)",
		frames, b.setup.Timing, b.sim.Now()-start, b.sim.Events())
	return grabbed, nil
}
