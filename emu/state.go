package emu

import (
	"encoding/binary"
	"hash/crc32"
)

// Snapshot format constants. The record is a flat little-endian buffer:
// header, fixed machine state block, then the retained ROM image so a
// snapshot restores without a separately supplied ROM.
const (
	snapshotMagic   = "CHIP8SNP"
	snapshotVersion = 1

	// magic(8) + version(2) + romLen(2) + dataCRC(4)
	snapshotHeaderSize = 16

	// memory + V + I + PC + stack + SP + delay + sound + mode + waitReg +
	// display
	snapshotStateSize = MemorySize + 16 + 2 + 2 + 2*StackDepth + 1 + 1 + 1 + 1 + 1 + displayBytes
)

// SnapshotSize returns the serialized size of a snapshot for a ROM of the
// given length.
func SnapshotSize(romLen int) int {
	return snapshotHeaderSize + snapshotStateSize + romLen
}

// Snapshot serializes the complete machine state into a versioned,
// self-describing record. The key levels and the randomness source are
// intentionally excluded: both belong to the outside world.
func (m *Machine) Snapshot() []byte {
	data := make([]byte, SnapshotSize(len(m.rom)))

	copy(data[0:8], snapshotMagic)
	binary.LittleEndian.PutUint16(data[8:10], snapshotVersion)
	binary.LittleEndian.PutUint16(data[10:12], uint16(len(m.rom)))

	offset := snapshotHeaderSize

	copy(data[offset:], m.mem.bytes[:])
	offset += MemorySize

	copy(data[offset:], m.v[:])
	offset += len(m.v)

	binary.LittleEndian.PutUint16(data[offset:], m.i)
	offset += 2
	binary.LittleEndian.PutUint16(data[offset:], m.pc)
	offset += 2

	for _, addr := range m.stack {
		binary.LittleEndian.PutUint16(data[offset:], addr)
		offset += 2
	}
	data[offset] = m.sp
	offset++

	data[offset] = m.timers.delay
	offset++
	data[offset] = m.timers.sound
	offset++

	data[offset] = uint8(m.mode)
	offset++
	data[offset] = m.waitReg
	offset++

	copy(data[offset:], m.display.pixels[:])
	offset += displayBytes

	copy(data[offset:], m.rom)

	crc := crc32.ChecksumIEEE(data[snapshotHeaderSize:])
	binary.LittleEndian.PutUint32(data[12:16], crc)

	return data
}

// VerifySnapshot validates the shape, version and checksum of a snapshot
// record without building a machine from it.
func VerifySnapshot(data []byte) error {
	if len(data) < snapshotHeaderSize+snapshotStateSize {
		return ErrSnapshotCorrupt
	}
	if string(data[0:8]) != snapshotMagic {
		return ErrSnapshotCorrupt
	}
	if binary.LittleEndian.Uint16(data[8:10]) != snapshotVersion {
		return ErrSnapshotVersionMismatch
	}
	romLen := int(binary.LittleEndian.Uint16(data[10:12]))
	if romLen > MaxROMSize || len(data) != SnapshotSize(romLen) {
		return ErrSnapshotCorrupt
	}
	crc := binary.LittleEndian.Uint32(data[12:16])
	if crc != crc32.ChecksumIEEE(data[snapshotHeaderSize:]) {
		return ErrSnapshotCorrupt
	}
	return nil
}

// Restore builds a complete machine from a snapshot record. The candidate is
// constructed entirely off to the side; no existing machine is touched, so
// the caller swaps it in only on success. Key levels start released and the
// timer accumulator starts empty; both are live external inputs rather than
// machine state.
func Restore(data []byte, cfg Config) (*Machine, error) {
	if err := VerifySnapshot(data); err != nil {
		return nil, err
	}

	romLen := int(binary.LittleEndian.Uint16(data[10:12]))
	rom := data[snapshotHeaderSize+snapshotStateSize:]

	m, err := NewMachine(rom[:romLen:romLen], cfg)
	if err != nil {
		return nil, err
	}

	offset := snapshotHeaderSize

	copy(m.mem.bytes[:], data[offset:offset+MemorySize])
	offset += MemorySize

	copy(m.v[:], data[offset:offset+len(m.v)])
	offset += len(m.v)

	m.i = binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	m.pc = binary.LittleEndian.Uint16(data[offset:])
	offset += 2

	for i := range m.stack {
		m.stack[i] = binary.LittleEndian.Uint16(data[offset:])
		offset += 2
	}
	m.sp = data[offset]
	offset++

	m.timers.delay = data[offset]
	offset++
	m.timers.sound = data[offset]
	offset++

	m.mode = Mode(data[offset])
	offset++
	m.waitReg = data[offset]
	offset++

	copy(m.display.pixels[:], data[offset:offset+displayBytes])
	m.display.dirty = true

	return m, nil
}
