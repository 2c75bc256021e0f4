package sim

import (
	"github.com/dustin/go-humanize"
)

// Time is simulated time, counted in picoseconds from the start of the
// simulation. It is also used for durations.
type Time int64

const (
	Picosecond  Time = 1
	Nanosecond       = 1000 * Picosecond
	Microsecond      = 1000 * Nanosecond
	Millisecond      = 1000 * Microsecond
)

// Seconds returns t as a floating point number of seconds
func (t Time) Seconds() float64 {
	return float64(t) / float64(1000*Millisecond)
}

// Frequency returns the frequency in Hz of a clock with period t
func (t Time) Frequency() float64 {
	if t <= 0 {
		return 0
	}
	return 1 / t.Seconds()
}

func (t Time) String() string {
	if t == 0 {
		return "0 s"
	}
	return humanize.SIWithDigits(t.Seconds(), 3, "s")
}
