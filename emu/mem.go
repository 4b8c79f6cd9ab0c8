package emu

// Memory layout constants.
const (
	// MemorySize is the full address space of the machine.
	MemorySize = 4096

	// ROMStart is the address programs are loaded at and start executing from.
	ROMStart = 0x200

	// MaxROMSize is the largest program that fits between ROMStart and the
	// end of memory.
	MaxROMSize = MemorySize - ROMStart

	fontBase   = 0x000
	glyphBytes = 5
)

// fontSprites holds the 16 hex digit glyphs, 5 bytes each, installed at
// fontBase when memory is created. Fx29 points the index register at them.
var fontSprites = [16 * glyphBytes]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the 4KB address space. The font sprites occupy the low addresses
// and the program image sits at ROMStart.
type Memory struct {
	bytes [MemorySize]uint8
}

// NewMemory returns zeroed memory with the font sprites installed.
func NewMemory() *Memory {
	m := &Memory{}
	copy(m.bytes[fontBase:], fontSprites[:])
	return m
}

// LoadROM copies a program image to ROMStart.
func (m *Memory) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return ErrROMTooLarge
	}
	copy(m.bytes[ROMStart:], rom)
	return nil
}

// ReadByte returns the byte at addr.
func (m *Memory) ReadByte(addr uint16) (uint8, error) {
	if addr >= MemorySize {
		return 0, ErrAddressOutOfRange
	}
	return m.bytes[addr], nil
}

// WriteByte stores a byte at addr.
func (m *Memory) WriteByte(addr uint16, val uint8) error {
	if addr >= MemorySize {
		return ErrAddressOutOfRange
	}
	m.bytes[addr] = val
	return nil
}

// FetchWord reads the big-endian 16-bit instruction word at addr.
func (m *Memory) FetchWord(addr uint16) (uint16, error) {
	if addr >= MemorySize-1 {
		return 0, ErrAddressOutOfRange
	}
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

// GlyphAddr returns the address of the font sprite for a hex digit.
// Only the low nibble of digit is used.
func (m *Memory) GlyphAddr(digit uint8) uint16 {
	return fontBase + uint16(digit&0x0F)*glyphBytes
}
