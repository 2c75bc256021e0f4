// Package sim is a small discrete-event simulator.
//
// Simulated hardware is modelled as signals that change at scheduled points
// in time. Test logic runs as tasks which suspend until a signal changes or
// a duration has elapsed. Tasks are goroutines, but only one of them (or the
// scheduler itself) ever runs at a time: control is handed back and forth
// explicitly, so simulation state needs no locking and every run of the same
// model produces the same event order.
package sim

import (
	"container/heap"
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
)

// ErrStalled is returned by Run when tasks are still waiting but no event is
// left that could ever wake them.
var ErrStalled = errors.New("simulation stalled")

// ctxCheckInterval is the number of events processed between checks of the
// context passed to Run.
const ctxCheckInterval = 4096

type event struct {
	at  Time
	seq uint64
	fn  func()
}

// eventQueue orders events by time, and events scheduled for the same time
// by the order in which they were scheduled.
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Simulator owns simulated time, the event queue and all tasks.
type Simulator struct {
	now   Time
	seq   uint64
	queue eventQueue
	free  []*event

	tasks []*Task

	// yield is signalled by the running task when it suspends or finishes
	yield chan struct{}

	// pending counts foreground tasks that have not finished yet
	pending int

	err    error
	events uint64
	log    log.Logger
}

type Option func(*Simulator)

// WithLogger sets the logger used for simulation diagnostics
func WithLogger(l log.Logger) Option {
	return func(s *Simulator) {
		s.log = l
	}
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		yield: make(chan struct{}),
		log:   log.Base(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "sim")
	return s
}

// Now returns the current simulated time
func (s *Simulator) Now() Time {
	return s.now
}

// Events returns the number of events processed so far
func (s *Simulator) Events() uint64 {
	return s.events
}

func (s *Simulator) schedule(at Time, fn func()) {
	var e *event
	if n := len(s.free); n > 0 {
		e = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		e = &event{}
	}
	e.at = at
	e.seq = s.seq
	e.fn = fn
	s.seq++
	heap.Push(&s.queue, e)
}

// Run processes events until every foreground task has finished.
//
// Run also returns early when a task fails, when tasks are left waiting with
// nothing scheduled (ErrStalled), or when ctx is done. There is no timeout of
// its own: a device that never produces an awaited edge keeps a free-running
// clock ticking until the caller gives up. Tasks still alive when Run returns
// are terminated.
//
// Run may be called again after starting new tasks; time and signal values
// carry over.
func (s *Simulator) Run(ctx context.Context) error {
	defer s.shutdown()

	start := s.events
	for s.pending > 0 && s.err == nil {
		if len(s.queue) == 0 {
			return errors.Wrapf(ErrStalled, "at %s with %d task(s) waiting", s.now, s.pending)
		}

		e := heap.Pop(&s.queue).(*event)
		s.now = e.at
		fn := e.fn
		e.fn = nil
		s.free = append(s.free, e)
		fn()

		s.events++
		if s.events%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, "simulation interrupted at %s", s.now)
			}
		}
	}

	s.log.Debugf("run finished at %s after %d events", s.now, s.events-start)
	return s.err
}

// shutdown terminates every task that has not finished
func (s *Simulator) shutdown() {
	for _, t := range s.tasks {
		if t.done {
			continue
		}
		t.resume <- false
		<-s.yield
	}
	s.tasks = s.tasks[:0]
	s.pending = 0
}
