package sim

import (
	"runtime"

	"github.com/pkg/errors"
)

// Task is a sequential piece of test logic running inside the simulation.
//
// All Wait methods suspend the task and hand control back to the scheduler.
// They must only be called from the task's own function.
type Task struct {
	sim        *Simulator
	name       string
	background bool

	// resume carries true to continue, false to terminate the task
	resume chan bool
	done   bool
	killed bool

	wakeFn      func()
	wakeLaterFn func()
}

// Go starts fn as a foreground task. Run keeps going until every foreground
// task has returned.
func (s *Simulator) Go(name string, fn func(t *Task) error) *Task {
	return s.spawn(name, false, fn)
}

// Background starts fn as a task that does not keep Run alive, e.g. a
// stimulus generator that loops forever.
func (s *Simulator) Background(name string, fn func(t *Task) error) *Task {
	return s.spawn(name, true, fn)
}

func (s *Simulator) spawn(name string, background bool, fn func(t *Task) error) *Task {
	t := &Task{
		sim:        s,
		name:       name,
		background: background,
		resume:     make(chan bool),
	}
	t.wakeFn = t.wake
	t.wakeLaterFn = func() { s.schedule(s.now, t.wakeFn) }

	s.tasks = append(s.tasks, t)
	if !background {
		s.pending++
	}

	go t.main(fn)
	s.schedule(s.now, t.wakeFn)
	return t
}

func (t *Task) main(fn func(t *Task) error) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
		t.finish(err)
		t.sim.yield <- struct{}{}
	}()

	if !<-t.resume {
		t.killed = true
		runtime.Goexit()
	}
	err = fn(t)
}

func (t *Task) finish(err error) {
	t.done = true
	if t.killed {
		return
	}

	s := t.sim
	if !t.background {
		s.pending--
	}
	if err != nil && s.err == nil {
		s.err = errors.Wrapf(err, "task %s", t.name)
	}
}

// wake transfers control to the task and blocks until it suspends again
func (t *Task) wake() {
	if t.done {
		return
	}
	t.resume <- true
	<-t.sim.yield
}

func (t *Task) suspend() {
	t.sim.yield <- struct{}{}
	if !<-t.resume {
		t.killed = true
		runtime.Goexit()
	}
}

// Name returns the name the task was started with
func (t *Task) Name() string {
	return t.name
}

// Now returns the current simulated time
func (t *Task) Now() Time {
	return t.sim.now
}

// Sim returns the simulator running the task
func (t *Task) Sim() *Simulator {
	return t.sim
}

// Wait suspends the task for d. A zero or negative duration still yields,
// letting other events scheduled for the current time run first.
func (t *Task) Wait(d Time) {
	if d < 0 {
		d = 0
	}
	t.sim.schedule(t.sim.now+d, t.wakeFn)
	t.suspend()
}

// WaitEdge suspends the task until p changes level, in either direction.
func (t *Task) WaitEdge(p Pin) {
	p.signal.watch(p.mask(), t.wakeLaterFn)
	t.suspend()
}

// WaitLevel suspends the task until p is at level. It returns immediately
// if p is already there.
func (t *Task) WaitLevel(p Pin, level bool) {
	for p.Level() != level {
		t.WaitEdge(p)
	}
}

// WaitRising suspends the task until the next low to high transition of p
func (t *Task) WaitRising(p Pin) {
	for {
		t.WaitEdge(p)
		if p.Level() {
			return
		}
	}
}

// WaitFalling suspends the task until the next high to low transition of p
func (t *Task) WaitFalling(p Pin) {
	for {
		t.WaitEdge(p)
		if !p.Level() {
			return
		}
	}
}

// WaitCycles suspends the task for n rising edges of c
func (t *Task) WaitCycles(c *Clock, n int) {
	for i := 0; i < n; i++ {
		t.WaitRising(c.Pin())
	}
}
