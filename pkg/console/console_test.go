package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sema/vgaharness/pkg/frame"
	"github.com/sema/vgaharness/pkg/sim"
)

func newTestConsole(mode Mode) (*sim.Simulator, *sim.Clock, *Console) {
	s := sim.New()
	clk := sim.NewClock(s.NewSignal("clk", 1), mode.ClockPeriod)
	c := New(s, clk, mode)
	clk.Start()
	return s, clk, c
}

func TestModesAreValid(t *testing.T) {
	for _, m := range []Mode{ModeVGA, ModeXGA, ModeMini} {
		require.NoError(t, m.Validate(), m.Name)
		found, err := LookupMode(m.Name)
		require.NoError(t, err)
		require.Equal(t, m, found)
	}
	require.Equal(t, 800, ModeVGA.HTotal())
	require.Equal(t, 525, ModeVGA.VTotal())
	// the XGA porches are one clock and one line short of the usual
	// 1344x806 so the raster lines up with timing.XGA1024x768
	require.Equal(t, 1336, ModeXGA.HTotal())
	require.Equal(t, 805, ModeXGA.VTotal())

	_, err := LookupMode("cga")
	require.Error(t, err)
}

func TestResetState(t *testing.T) {
	_, _, c := newTestConsole(ModeMini)

	for address := uint8(0); address < Cells; address++ {
		require.Equal(t, uint32(DefaultColor)<<8, c.Read(address, WidthHalf))
	}
	require.Equal(t, uint32(0), c.Read(RegisterBackground, WidthByte))
	require.Equal(t, uint32(0), c.Read(RegisterControl, WidthByte))
	require.True(t, c.Render().Uniform())
}

func TestRegisterWrites(t *testing.T) {
	tests := []struct {
		name     string
		address  uint8
		value    uint32
		width    Width
		readBack uint32
	}{
		{
			name:     "byte write stores character with default color",
			address:  3,
			value:    'A',
			width:    WidthByte,
			readBack: uint32(DefaultColor)<<8 | 'A',
		},
		{
			name:     "half write stores character and color",
			address:  29,
			value:    0x2A00 | 'z',
			width:    WidthHalf,
			readBack: 0x2A00 | 'z',
		},
		{
			name:     "word write ignores bits above the color",
			address:  10,
			value:    0xFFFFC000 | 0x0C00 | '!',
			width:    WidthWord,
			readBack: 0x0C00 | '!',
		},
		{
			name:     "background keeps six bits",
			address:  RegisterBackground,
			value:    0xFF,
			width:    WidthByte,
			readBack: 0x3F,
		},
		{
			name:     "control keeps the text enable bit",
			address:  RegisterControl,
			value:    0xFF,
			width:    WidthByte,
			readBack: uint32(ControlTextOff),
		},
		{
			name:     "frame counter is read-only",
			address:  RegisterFrame,
			value:    0x55,
			width:    WidthByte,
			readBack: 0,
		},
		{
			name:     "unmapped address reads zero",
			address:  0x3F,
			value:    0x55,
			width:    WidthByte,
			readBack: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, c := newTestConsole(ModeMini)
			c.Write(tt.address, tt.value, tt.width)
			require.Equal(t, tt.readBack, c.Read(tt.address, WidthWord))
		})
	}
}

func TestByteReadOfCellReturnsCharacter(t *testing.T) {
	_, _, c := newTestConsole(ModeMini)
	c.Write(0, 0x1500|'Q', WidthHalf)
	require.Equal(t, uint32('Q'), c.Read(0, WidthByte))
}

func TestRepeatedWritesAreIdempotent(t *testing.T) {
	_, _, once := newTestConsole(ModeMini)
	_, _, twice := newTestConsole(ModeMini)

	for i, ch := range []byte("CIRO!") {
		once.Write(uint8(i), uint32(ch), WidthByte)
		twice.Write(uint8(i), uint32(ch), WidthByte)
		twice.Write(uint8(i), uint32(ch), WidthByte)
	}
	once.Write(12, 0x3000|'X', WidthHalf)
	twice.Write(12, 0x3000|'X', WidthHalf)
	twice.Write(12, 0x3000|'X', WidthHalf)

	require.NoError(t, frame.Compare(twice.Render(), once.Render()))
	require.Equal(t, once.Text(), twice.Text())
}

func TestGlyphs(t *testing.T) {
	require.Equal(t, glyph{}, *glyphFor(0))
	require.Equal(t, glyph{}, *glyphFor(' '))
	require.Equal(t, glyph{}, *glyphFor(0x7F))
	for _, ch := range []byte("CIRO!VGA09az") {
		require.NotEqual(t, glyph{}, *glyphFor(ch), string(ch))
	}
	require.NotEqual(t, *glyphFor('C'), *glyphFor('O'))

	// 7x13 glyphs sit on the baseline at row 13
	require.Equal(t, glyph{
		4: 0x78, 5: 0x84, 6: 0x80, 7: 0x80, 8: 0x80,
		9: 0x80, 10: 0x80, 11: 0x84, 12: 0x78,
	}, *glyphFor('C'))
}

func TestRenderDrawsTextInCellColor(t *testing.T) {
	_, _, c := newTestConsole(ModeMini)
	c.Write(RegisterBackground, 0x01, WidthByte)
	c.Write(11, 0x3000|'H', WidthHalf)

	f := c.Render()
	ox, oy := ModeMini.textOrigin()
	cellX, cellY := ox+1*cellWidth, oy+1*cellHeight

	var text, other int
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			p := f.At(y, x)
			switch p {
			case frame.RGB{0, 0, 1}:
				continue
			case frame.RGB{3, 0, 0}:
				text++
				require.True(t, x >= cellX && x < cellX+cellWidth, "x=%d", x)
				require.True(t, y >= cellY && y < cellY+cellHeight, "y=%d", y)
			default:
				other++
			}
		}
	}
	require.NotZero(t, text)
	require.Zero(t, other)
}

func TestRenderScalesText(t *testing.T) {
	_, _, mini := newTestConsole(ModeMini)
	_, _, vga := newTestConsole(ModeVGA)
	mini.Write(0, 'W', WidthByte)
	vga.Write(0, 'W', WidthByte)

	small, large := mini.Render(), vga.Render()
	mx, my := ModeMini.textOrigin()
	vx, vy := ModeVGA.textOrigin()
	for y := 0; y < cellHeight; y++ {
		for x := 0; x < cellWidth; x++ {
			want := small.At(my+y, mx+x)
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					require.Equal(t, want, large.At(vy+2*y+dy, vx+2*x+dx))
				}
			}
		}
	}
}

func TestControlHidesText(t *testing.T) {
	_, _, c := newTestConsole(ModeMini)
	c.Write(0, 'M', WidthByte)
	require.False(t, c.Render().Uniform())

	c.Write(RegisterControl, uint32(ControlTextOff), WidthByte)
	require.True(t, c.Render().Uniform())
}

func TestRasterTiming(t *testing.T) {
	s, _, c := newTestConsole(ModeMini)
	pins := c.Pins()
	period := ModeMini.ClockPeriod

	var hWidth, hPeriod, vWidth, vPeriod sim.Time
	s.Go("observer", func(task *sim.Task) error {
		c.ResetN().Set(true)

		task.WaitFalling(pins.HSync)
		start := task.Now()
		task.WaitRising(pins.HSync)
		hWidth = task.Now() - start
		task.WaitFalling(pins.HSync)
		hPeriod = task.Now() - start

		task.WaitFalling(pins.VSync)
		start = task.Now()
		task.WaitRising(pins.VSync)
		vWidth = task.Now() - start
		task.WaitFalling(pins.VSync)
		vPeriod = task.Now() - start
		return nil
	})
	require.NoError(t, s.Run(context.Background()))

	require.Equal(t, sim.Time(ModeMini.HSync)*period, hWidth)
	require.Equal(t, sim.Time(ModeMini.HTotal())*period, hPeriod)
	require.Equal(t, sim.Time(ModeMini.VSync*ModeMini.HTotal())*period, vWidth)
	require.Equal(t, sim.Time(ModeMini.FrameClocks())*period, vPeriod)
}

func TestSyncLagsColorByOneClock(t *testing.T) {
	s, clk, c := newTestConsole(ModeMini)
	pins := c.Pins()

	var clocks uint64
	s.Go("observer", func(task *sim.Task) error {
		c.ResetN().Set(true)
		task.WaitCycles(clk, 1)
		first := clk.Cycles()
		task.WaitFalling(pins.HSync)
		clocks = clk.Cycles() - first
		return nil
	})
	require.NoError(t, s.Run(context.Background()))

	// the first clock drives pixel 0, hsync starts one clock after pixel
	// HVisible+HFrontPorch was driven
	require.Equal(t, uint64(ModeMini.HVisible+ModeMini.HFrontPorch+1), clocks)
}

func TestStatusAndFrameCounter(t *testing.T) {
	s, clk, c := newTestConsole(ModeMini)

	var frames, status []uint32
	sample := func() {
		frames = append(frames, c.Read(RegisterFrame, WidthByte))
		status = append(status, c.Read(RegisterStatus, WidthByte))
	}

	s.Go("observer", func(task *sim.Task) error {
		c.ResetN().Set(true)
		task.WaitCycles(clk, 1)
		sample()
		task.WaitCycles(clk, ModeMini.HVisible)
		sample()
		task.WaitCycles(clk, ModeMini.FrameClocks()-ModeMini.HVisible)
		sample()
		task.WaitCycles(clk, ModeMini.VVisible*ModeMini.HTotal())
		sample()
		return nil
	})
	require.NoError(t, s.Run(context.Background()))

	require.Equal(t, []uint32{1, 1, 2, 2}, frames)
	require.Equal(t, []uint32{0, uint32(StatusHBlank), 0, uint32(StatusVBlank)}, status)
}

func TestResetClearsRegisters(t *testing.T) {
	s, clk, c := newTestConsole(ModeMini)

	s.Go("observer", func(task *sim.Task) error {
		c.ResetN().Set(true)
		task.WaitCycles(clk, 1)
		c.Write(0, 'R', WidthByte)
		c.Write(RegisterBackground, 0x11, WidthByte)

		c.ResetN().Set(false)
		task.WaitCycles(clk, 1)
		return nil
	})
	require.NoError(t, s.Run(context.Background()))

	require.Equal(t, uint32(0), c.Read(0, WidthByte))
	require.Equal(t, uint32(0), c.Read(RegisterBackground, WidthByte))
	require.Equal(t, uint64(0x88), c.UOOut().Value())
}
