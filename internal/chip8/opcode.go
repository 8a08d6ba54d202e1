package chip8

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// Opcode is a single 16-bit CHIP-8 instruction word. All accessors are total,
// any 16-bit value decodes.
type Opcode uint16

// newOpcode combines two instruction bytes high byte first.
func newOpcode(high, low byte) Opcode {
	return Opcode(uint16(high)<<8 | uint16(low))
}

// Class returns the high nibble that selects the instruction family.
func (o Opcode) Class() uint8 {
	return uint8(o >> 12)
}

// X returns the first register index, bits 8-11.
func (o Opcode) X() uint8 {
	return uint8(o>>8) & 0x0F
}

// Y returns the second register index, bits 4-7.
func (o Opcode) Y() uint8 {
	return uint8(o>>4) & 0x0F
}

// N returns the 4-bit immediate, bits 0-3. Used as sprite height and as
// secondary key of the 0x5, 0x8 and 0x9 families.
func (o Opcode) N() uint8 {
	return uint8(o) & 0x0F
}

// KK returns the 8-bit immediate, bits 0-7.
func (o Opcode) KK() uint8 {
	return uint8(o)
}

// NNN returns the 12-bit address, bits 0-11.
func (o Opcode) NNN() uint16 {
	return uint16(o) & 0x0FFF
}
