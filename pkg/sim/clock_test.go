package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClockEdgesFollowPeriod(t *testing.T) {
	s := New()
	clk := NewClock(s.NewSignal("clk", 1), 41666)
	clk.Start()

	var rises, falls []Time
	s.Go("observer", func(task *Task) error {
		for i := 0; i < 3; i++ {
			task.WaitFalling(clk.Pin())
			falls = append(falls, task.Now())
			task.WaitRising(clk.Pin())
			rises = append(rises, task.Now())
		}
		return nil
	})

	require.NoError(t, s.Run(context.Background()))
	require.Equal(t, []Time{20833, 62499, 104165}, falls)
	require.Equal(t, []Time{41666, 83332, 124998}, rises)
}

func TestClockCallbacksRunBeforeWokenTasks(t *testing.T) {
	s := New()
	clk := NewClock(s.NewSignal("clk", 1), 10)
	out := s.NewSignal("q", 8)

	clk.OnRising(func() {
		out.Set(out.Value() + 1)
	})
	clk.Start()

	var seen []uint64
	s.Go("observer", func(task *Task) error {
		for i := 0; i < 4; i++ {
			task.WaitRising(clk.Pin())
			seen = append(seen, out.Value())
		}
		return nil
	})

	require.NoError(t, s.Run(context.Background()))
	// the edge at t=0 happens before the observer starts waiting
	require.Equal(t, []uint64{2, 3, 4, 5}, seen)
	require.Equal(t, uint64(5), clk.Cycles())
}

func TestWaitCycles(t *testing.T) {
	s := New()
	clk := NewClock(s.NewSignal("clk", 1), 100)
	clk.Start()

	s.Go("waiter", func(task *Task) error {
		task.WaitCycles(clk, 10)
		return nil
	})

	require.NoError(t, s.Run(context.Background()))
	require.Equal(t, Time(1000), s.Now())
}
