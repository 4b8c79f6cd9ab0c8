// Package emu implements the machine core: memory, registers, call stack,
// delay/sound timers, the monochrome framebuffer, the hex keypad and the
// fetch/decode/execute interpreter, plus bit-exact snapshot save/restore.
// It has no presentation or OS dependencies; the surrounding loop owns a
// Machine exclusively and is its only mutator.
package emu

import (
	"math/rand/v2"
	"time"
)

// StackDepth is the number of return addresses the call stack holds.
const StackDepth = 16

// DefaultClockHz is the default instruction dispatch rate.
const DefaultClockHz = 600

// Config carries the tunable machine dependencies. The zero value selects
// the defaults.
type Config struct {
	// ClockHz is the instruction dispatch rate in instructions per second.
	ClockHz int

	// Rand supplies the uniformly distributed bytes consumed by the RND
	// instruction. Injected so execution is deterministic under test; it is
	// deliberately excluded from snapshots.
	Rand func() byte
}

func (c Config) withDefaults() Config {
	if c.ClockHz <= 0 {
		c.ClockHz = DefaultClockHz
	}
	if c.Rand == nil {
		r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		c.Rand = func() byte { return byte(r.UintN(256)) }
	}
	return c
}

// Machine is the complete emulated machine state: memory, registers, stack,
// timers, framebuffer and keypad, plus the retained ROM image so snapshots
// are self-contained. It has a single owner, the real-time loop, which is
// the only mutator for its entire life.
type Machine struct {
	mem     *Memory
	display *Display
	keys    *Keypad
	timers  *Timers

	v     [16]uint8
	i     uint16
	pc    uint16
	stack [StackDepth]uint16
	sp    uint8

	mode     Mode
	waitReg  uint8
	waitKeys [NumKeys]bool

	paused bool

	rom  []byte
	rand func() byte

	clockHz  int
	stepDebt int64 // instruction budget accumulator, in Hz-nanoseconds
}

// NewMachine creates a fresh machine with the ROM loaded at ROMStart, all
// registers zeroed and the program counter at ROMStart.
func NewMachine(rom []byte, cfg Config) (*Machine, error) {
	cfg = cfg.withDefaults()

	mem := NewMemory()
	if err := mem.LoadROM(rom); err != nil {
		return nil, err
	}

	m := &Machine{
		mem:     mem,
		display: NewDisplay(),
		keys:    NewKeypad(),
		timers:  NewTimers(),
		pc:      ROMStart,
		rom:     append([]byte(nil), rom...),
		rand:    cfg.Rand,
		clockHz: cfg.ClockHz,
	}
	return m, nil
}

// maxFrameDelta caps a single frame's elapsed time so a stall (window drag,
// debugger stop) does not trigger a burst of catch-up instructions.
const maxFrameDelta = 250 * time.Millisecond

// RunFrame advances the machine by one presentation frame: it ticks the
// timers for the elapsed wall-clock time and dispatches however many
// instructions the configured clock rate covers. While paused both are
// skipped. The first fatal error stops dispatch and is returned with the
// machine otherwise intact.
func (m *Machine) RunFrame(elapsed time.Duration) error {
	if m.paused {
		return nil
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > maxFrameDelta {
		elapsed = maxFrameDelta
	}

	m.timers.Advance(elapsed)

	// Accumulate the instruction budget in Hz-nanoseconds so dispatch rate
	// stays exact across frames of uneven length.
	m.stepDebt += elapsed.Nanoseconds() * int64(m.clockHz)
	steps := m.stepDebt / int64(time.Second)
	m.stepDebt -= steps * int64(time.Second)

	for ; steps > 0; steps-- {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// SetKey records the level of a hex key, 0x0-0xF.
func (m *Machine) SetKey(key uint8, down bool) {
	m.keys.Set(key, down)
}

// SetPaused halts or resumes both instruction dispatch and timer ticking.
// Input polling is the loop's concern and keeps running.
func (m *Machine) SetPaused(paused bool) {
	m.paused = paused
}

// Paused reports whether the machine is paused.
func (m *Machine) Paused() bool {
	return m.paused
}

// Mode returns the interpreter state.
func (m *Machine) Mode() Mode {
	return m.mode
}

// SoundActive reports whether the sound timer is running.
func (m *Machine) SoundActive() bool {
	return m.timers.SoundActive()
}

// Display exposes the framebuffer for presentation. Read-only by
// convention: only the interpreter draws to it.
func (m *Machine) Display() *Display {
	return m.display
}

// ROM returns the originally loaded program bytes.
func (m *Machine) ROM() []byte {
	return m.rom
}
