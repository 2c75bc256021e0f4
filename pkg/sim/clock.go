package sim

// Clock toggles a one bit signal with a fixed period. It is free running: once
// started it keeps scheduling edges for as long as the simulation runs, and
// is independent of anything it clocks.
type Clock struct {
	sim     *Simulator
	signal  *Signal
	period  Time
	high    Time
	running bool
	cycles  uint64

	// rising are called on every rising edge, after the signal went high
	rising []func()

	riseFn func()
	fallFn func()
}

// NewClock creates a clock driving signal with the given period. The high
// phase lasts period/2, rounded down.
func NewClock(signal *Signal, period Time) *Clock {
	if period < 2 {
		panic("clock period must be at least 2ps")
	}
	c := &Clock{
		sim:    signal.sim,
		signal: signal,
		period: period,
		high:   period / 2,
	}
	c.riseFn = c.rise
	c.fallFn = c.fall
	return c
}

func (c *Clock) Period() Time {
	return c.period
}

// Pin returns the clock wire
func (c *Clock) Pin() Pin {
	return c.signal.Bit(0)
}

// Cycles returns the number of rising edges so far
func (c *Clock) Cycles() uint64 {
	return c.cycles
}

// OnRising registers fn to be called on every rising edge. Callbacks run in
// registration order, inside the clock event, so anything they drive is
// settled before woken tasks observe it.
func (c *Clock) OnRising(fn func()) {
	c.rising = append(c.rising, fn)
}

// Start begins toggling, with the first rising edge at the current time.
// Starting a running clock does nothing.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.running = true
	c.sim.schedule(c.sim.now, c.riseFn)
}

func (c *Clock) rise() {
	c.cycles++
	c.signal.Set(1)
	for _, fn := range c.rising {
		fn()
	}
	c.sim.schedule(c.sim.now+c.high, c.fallFn)
}

func (c *Clock) fall() {
	c.signal.Set(0)
	c.sim.schedule(c.sim.now+c.period-c.high, c.riseFn)
}
