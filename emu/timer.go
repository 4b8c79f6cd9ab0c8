package emu

import "time"

// TickRate is the fixed decrement rate of the delay and sound timers in Hz.
const TickRate = 60

const tickPeriod = time.Second / TickRate

// Timers are the two decrementing byte counters. They tick at a fixed
// real-time rate independent of instruction throughput: elapsed wall-clock
// time accumulates and one decrement fires per tick period crossed.
type Timers struct {
	delay uint8
	sound uint8
	acc   time.Duration
}

// NewTimers returns timers at zero.
func NewTimers() *Timers {
	return &Timers{}
}

// Advance accumulates elapsed wall-clock time and applies any whole ticks
// it covers. Counters stop at zero.
func (t *Timers) Advance(elapsed time.Duration) {
	t.acc += elapsed
	for t.acc >= tickPeriod {
		t.acc -= tickPeriod
		if t.delay > 0 {
			t.delay--
		}
		if t.sound > 0 {
			t.sound--
		}
	}
}

// Delay returns the delay counter.
func (t *Timers) Delay() uint8 {
	return t.delay
}

// SetDelay sets the delay counter.
func (t *Timers) SetDelay(v uint8) {
	t.delay = v
}

// SetSound sets the sound counter.
func (t *Timers) SetSound(v uint8) {
	t.sound = v
}

// SoundActive reports whether the audio collaborator should be beeping.
func (t *Timers) SoundActive() bool {
	return t.sound > 0
}
