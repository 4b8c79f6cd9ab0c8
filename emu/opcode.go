package emu

// opcode is one decoded 16-bit instruction word. The fields are the operand
// slices every instruction family draws from; unused fields are simply
// ignored by the handler.
type opcode struct {
	value uint16 // full instruction word
	x     uint8  // low nibble of the high byte, first register operand
	y     uint8  // high nibble of the low byte, second register operand
	n     uint8  // low nibble, sprite height
	kk    uint8  // low byte, immediate literal
	nnn   uint16 // low 12 bits, address literal
}

func decode(word uint16) opcode {
	return opcode{
		value: word,
		x:     uint8(word >> 8 & 0xF),
		y:     uint8(word >> 4 & 0xF),
		n:     uint8(word & 0xF),
		kk:    uint8(word),
		nnn:   word & 0xFFF,
	}
}
