package emu

// Mode is the interpreter state. Pausing is a whole-machine toggle handled
// by the loop and tracked separately so a paused key-wait resumes as a
// key-wait.
type Mode uint8

const (
	// ModeRunning is the initial state: fetch, decode, execute each step.
	ModeRunning Mode = iota
	// ModeKeyWait holds the program counter until a key press transition is
	// observed, then stores the key in the target register and resumes.
	ModeKeyWait
)

const flagReg = 0xF

// Step executes one interpreter cycle: a single instruction in ModeRunning,
// or one key poll in ModeKeyWait. Fatal errors (unknown opcode, stack
// faults, addressing faults) are returned with the rest of the machine state
// unchanged.
func (m *Machine) Step() error {
	if m.mode == ModeKeyWait {
		m.pollKeyWait()
		return nil
	}

	word, err := m.mem.FetchWord(m.pc)
	if err != nil {
		return err
	}
	// The counter moves past the instruction immediately; jumps, calls and
	// skips overwrite or extend it below.
	m.pc += 2

	return m.execute(decode(word))
}

func (m *Machine) execute(op opcode) error {
	switch op.value >> 12 {
	case 0x0:
		switch op.value {
		case 0x00E0: // CLS
			m.display.Clear()
		case 0x00EE: // RET
			if m.sp == 0 {
				return ErrStackUnderflow
			}
			m.sp--
			m.pc = m.stack[m.sp]
		default:
			return UnknownOpcodeError{Op: op.value}
		}

	case 0x1: // JP nnn
		m.pc = op.nnn

	case 0x2: // CALL nnn
		if m.sp >= StackDepth {
			return ErrStackOverflow
		}
		m.stack[m.sp] = m.pc
		m.sp++
		m.pc = op.nnn

	case 0x3: // SE Vx, kk
		if m.v[op.x] == op.kk {
			m.pc += 2
		}

	case 0x4: // SNE Vx, kk
		if m.v[op.x] != op.kk {
			m.pc += 2
		}

	case 0x5: // SE Vx, Vy
		if op.n != 0 {
			return UnknownOpcodeError{Op: op.value}
		}
		if m.v[op.x] == m.v[op.y] {
			m.pc += 2
		}

	case 0x6: // LD Vx, kk
		m.v[op.x] = op.kk

	case 0x7: // ADD Vx, kk (no carry flag)
		m.v[op.x] += op.kk

	case 0x8:
		return m.executeALU(op)

	case 0x9: // SNE Vx, Vy
		if op.n != 0 {
			return UnknownOpcodeError{Op: op.value}
		}
		if m.v[op.x] != m.v[op.y] {
			m.pc += 2
		}

	case 0xA: // LD I, nnn
		m.i = op.nnn

	case 0xB: // JP V0, nnn
		m.pc = op.nnn + uint16(m.v[0])

	case 0xC: // RND Vx, kk
		m.v[op.x] = m.rand() & op.kk

	case 0xD: // DRW Vx, Vy, n
		return m.executeDraw(op)

	case 0xE:
		switch op.kk {
		case 0x9E: // SKP Vx
			if m.keys.Pressed(m.v[op.x]) {
				m.pc += 2
			}
		case 0xA1: // SKNP Vx
			if !m.keys.Pressed(m.v[op.x]) {
				m.pc += 2
			}
		default:
			return UnknownOpcodeError{Op: op.value}
		}

	case 0xF:
		return m.executeMisc(op)
	}

	return nil
}

// executeALU handles the 8xy_ register arithmetic family. The flag register
// is written after the result, so instructions targeting VF leave the flag
// as the final value.
func (m *Machine) executeALU(op opcode) error {
	switch op.n {
	case 0x0: // LD Vx, Vy
		m.v[op.x] = m.v[op.y]
	case 0x1: // OR
		m.v[op.x] |= m.v[op.y]
	case 0x2: // AND
		m.v[op.x] &= m.v[op.y]
	case 0x3: // XOR
		m.v[op.x] ^= m.v[op.y]
	case 0x4: // ADD with carry
		sum := uint16(m.v[op.x]) + uint16(m.v[op.y])
		m.v[op.x] = uint8(sum)
		m.v[flagReg] = uint8(sum >> 8)
	case 0x5: // SUB Vx - Vy, VF = not borrow
		noBorrow := m.v[op.x] >= m.v[op.y]
		m.v[op.x] -= m.v[op.y]
		m.v[flagReg] = boolFlag(noBorrow)
	case 0x6: // SHR Vx, VF = shifted-out bit. Operates on Vx, Vy is ignored.
		lsb := m.v[op.x] & 0x01
		m.v[op.x] >>= 1
		m.v[flagReg] = lsb
	case 0x7: // SUBN Vy - Vx, VF = not borrow
		noBorrow := m.v[op.y] >= m.v[op.x]
		m.v[op.x] = m.v[op.y] - m.v[op.x]
		m.v[flagReg] = boolFlag(noBorrow)
	case 0xE: // SHL Vx, VF = shifted-out bit. Operates on Vx, Vy is ignored.
		msb := m.v[op.x] >> 7
		m.v[op.x] <<= 1
		m.v[flagReg] = msb
	default:
		return UnknownOpcodeError{Op: op.value}
	}
	return nil
}

func (m *Machine) executeDraw(op opcode) error {
	if op.n == 0 {
		return UnknownOpcodeError{Op: op.value}
	}
	sprite := make([]byte, op.n)
	for row := range sprite {
		b, err := m.mem.ReadByte(m.i + uint16(row))
		if err != nil {
			return err
		}
		sprite[row] = b
	}
	m.v[flagReg] = boolFlag(m.display.DrawSprite(m.v[op.x], m.v[op.y], sprite))
	return nil
}

// executeMisc handles the Fx__ timer, index and memory transfer family.
func (m *Machine) executeMisc(op opcode) error {
	switch op.kk {
	case 0x07: // LD Vx, DT
		m.v[op.x] = m.timers.Delay()

	case 0x0A: // LD Vx, K - block until a key press transition
		m.mode = ModeKeyWait
		m.waitReg = op.x
		m.waitKeys = m.keys.Levels()

	case 0x15: // LD DT, Vx
		m.timers.SetDelay(m.v[op.x])

	case 0x18: // LD ST, Vx
		m.timers.SetSound(m.v[op.x])

	case 0x1E: // ADD I, Vx
		m.i += uint16(m.v[op.x])

	case 0x29: // LD F, Vx
		m.i = m.mem.GlyphAddr(m.v[op.x])

	case 0x33: // LD B, Vx - BCD of Vx at I, I+1, I+2
		val := m.v[op.x]
		if err := m.mem.WriteByte(m.i, val/100); err != nil {
			return err
		}
		if err := m.mem.WriteByte(m.i+1, val/10%10); err != nil {
			return err
		}
		if err := m.mem.WriteByte(m.i+2, val%10); err != nil {
			return err
		}

	case 0x55: // LD [I], Vx - store V0..Vx, I unchanged
		for reg := uint8(0); reg <= op.x; reg++ {
			if err := m.mem.WriteByte(m.i+uint16(reg), m.v[reg]); err != nil {
				return err
			}
		}

	case 0x65: // LD Vx, [I] - load V0..Vx, I unchanged
		for reg := uint8(0); reg <= op.x; reg++ {
			b, err := m.mem.ReadByte(m.i + uint16(reg))
			if err != nil {
				return err
			}
			m.v[reg] = b
		}

	default:
		return UnknownOpcodeError{Op: op.value}
	}
	return nil
}

// pollKeyWait scans for a key that is down now but was up at the previous
// poll. On a transition the key identity lands in the target register and
// the interpreter resumes; otherwise the counter stays where it is.
func (m *Machine) pollKeyWait() {
	now := m.keys.Levels()
	for key := 0; key < NumKeys; key++ {
		if now[key] && !m.waitKeys[key] {
			m.v[m.waitReg] = uint8(key)
			m.mode = ModeRunning
			m.waitKeys = [NumKeys]bool{}
			return
		}
	}
	m.waitKeys = now
}

func boolFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
