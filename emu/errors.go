package emu

import (
	"errors"
	"fmt"
)

// Errors returned by the machine core. Fatal execution errors (unknown
// opcode, stack faults) leave the rest of the machine state untouched so the
// caller can freeze emulation and keep presenting the last frame.
var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrROMTooLarge       = errors.New("rom too large")
	ErrStackOverflow     = errors.New("call stack overflow")
	ErrStackUnderflow    = errors.New("call stack underflow")

	ErrSnapshotCorrupt         = errors.New("snapshot corrupt")
	ErrSnapshotVersionMismatch = errors.New("unsupported snapshot version")
)

// UnknownOpcodeError reports an instruction word that does not decode to any
// documented operation.
type UnknownOpcodeError struct {
	Op uint16
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04X", e.Op)
}
