package vga_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/sema/vgaharness/pkg/console"
	"github.com/sema/vgaharness/pkg/frame"
	"github.com/sema/vgaharness/pkg/sim"
	"github.com/sema/vgaharness/pkg/timing"
	"github.com/sema/vgaharness/pkg/vga"
)

type rig struct {
	sim     *sim.Simulator
	clk     *sim.Clock
	console *console.Console
}

func newRig(mode console.Mode) *rig {
	s := sim.New()
	clk := sim.NewClock(s.NewSignal("clk", 1), mode.ClockPeriod)
	c := console.New(s, clk, mode)
	clk.Start()
	return &rig{sim: s, clk: clk, console: c}
}

// grab brings the console out of reset, runs setup and acquires one frame
func (r *rig) grab(t *testing.T, cfg timing.Config, setup func(task *sim.Task), opts ...vga.Option) *frame.Frame {
	g, err := vga.New(cfg, r.console.Pins(), opts...)
	require.NoError(t, err)

	var f *frame.Frame
	r.sim.Go("grab", func(task *sim.Task) error {
		task.WaitCycles(r.clk, 10)
		r.console.ResetN().Set(true)
		if setup != nil {
			setup(task)
		}
		f = g.Grab(task)
		return nil
	})
	require.NoError(t, r.sim.Run(context.Background()))
	return f
}

func writeText(c *console.Console, offset int, text string, color uint8) {
	for i := 0; i < len(text); i++ {
		c.Write(uint8(offset+i), uint32(color)<<8|uint32(text[i]), console.WidthHalf)
	}
}

func TestGrabMatchesRender(t *testing.T) {
	r := newRig(console.ModeMini)
	got := r.grab(t, timing.Mini96x56, func(task *sim.Task) {
		writeText(r.console, 0, "CIRO!", 0x3F)
		writeText(r.console, 10, "console", 0x0C)
		writeText(r.console, 20, "0123456789", 0x31)
		r.console.Write(console.RegisterBackground, 0x01, console.WidthByte)
	})

	require.False(t, got.Uniform())
	require.NoError(t, frame.Compare(got, r.console.Render()))
}

func TestGrabDimensionsAndSampleRange(t *testing.T) {
	r := newRig(console.ModeMini)
	cfg := timing.Mini96x56
	got := r.grab(t, cfg, func(task *sim.Task) {
		writeText(r.console, 0, "##########", 0x3F)
	})

	require.Equal(t, cfg.VisibleColumns, got.Width)
	require.Equal(t, cfg.VisibleLines, got.Height)
	require.Equal(t, cfg.ColorChannelBits, got.Bits)
	for _, v := range got.Pix {
		require.True(t, v <= cfg.MaxSample())
	}
}

func TestGrabStartingDuringVSync(t *testing.T) {
	r := newRig(console.ModeMini)
	got := r.grab(t, timing.Mini96x56, func(task *sim.Task) {
		writeText(r.console, 0, "mid", 0x30)
		task.WaitFalling(r.console.Pins().VSync)
	})
	require.NoError(t, frame.Compare(got, r.console.Render()))
}

func TestGrabReportsEveryLine(t *testing.T) {
	r := newRig(console.ModeMini)

	var lines, totals []int
	r.grab(t, timing.Mini96x56, nil, vga.WithLineCallback(func(line, total int) {
		lines = append(lines, line)
		totals = append(totals, total)
	}))

	for _, total := range totals {
		require.Equal(t, timing.Mini96x56.ScanLines(), total)
	}
	require.Len(t, lines, timing.Mini96x56.ScanLines())
	require.Equal(t, 0, lines[0])
	require.Equal(t, timing.Mini96x56.ScanLines()-1, lines[len(lines)-1])
}

func TestMisconfiguredTimingSkewsFrame(t *testing.T) {
	r := newRig(console.ModeMini)
	cfg := timing.Mini96x56
	cfg.BackPorchDelay += cfg.PixelPeriod
	got := r.grab(t, cfg, func(task *sim.Task) {
		writeText(r.console, 0, "skew", 0x3F)
	})

	require.Equal(t, cfg.VisibleColumns, got.Width)
	require.Equal(t, cfg.VisibleLines, got.Height)

	err := frame.Compare(got, r.console.Render())
	var mismatch *frame.MismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestSyncWaitsIndefinitelyWithoutVSync(t *testing.T) {
	r := newRig(console.ModeMini)
	g, err := vga.New(timing.Mini96x56, r.console.Pins())
	require.NoError(t, err)

	// the console is held in reset and never pulses vsync
	r.sim.Go("grab", func(task *sim.Task) error {
		g.Sync(task)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.sim.Background("timeout", func(task *sim.Task) error {
		task.Wait(10 * sim.Millisecond)
		cancel()
		return nil
	})

	err = r.sim.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestNewValidatesPins(t *testing.T) {
	s := sim.New()
	bus := s.NewSignal("uo_out", 8)

	pins := vga.PMODPins(bus)
	pins.Red = pins.Red[:1]
	_, err := vga.New(timing.VGA640x480, pins)
	require.Error(t, err)

	_, err = vga.New(timing.VGA640x480, vga.Pins{})
	require.Error(t, err)

	cfg := timing.VGA640x480
	cfg.VisibleLines = 0
	_, err = vga.New(cfg, vga.PMODPins(bus))
	require.Error(t, err)
}

func TestPackPMOD(t *testing.T) {
	require.Equal(t, uint8(0x88), vga.PackPMOD(0, 0, 0, true, true))
	require.Equal(t, uint8(0x11), vga.PackPMOD(3, 0, 0, false, false))
	require.Equal(t, uint8(0x20), vga.PackPMOD(0, 1, 0, false, false))
	require.Equal(t, uint8(0x04), vga.PackPMOD(0, 0, 2, false, false))

	s := sim.New()
	bus := s.NewSignal("uo_out", 8)
	pins := vga.PMODPins(bus)
	bus.Set(uint64(vga.PackPMOD(2, 1, 3, false, true)))
	require.True(t, pins.Red[0].Level())
	require.False(t, pins.Red[1].Level())
	require.False(t, pins.Green[0].Level())
	require.True(t, pins.Green[1].Level())
	require.True(t, pins.Blue[0].Level())
	require.True(t, pins.Blue[1].Level())
	require.False(t, pins.HSync.Level())
	require.True(t, pins.VSync.Level())
}
