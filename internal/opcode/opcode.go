// Package opcode provides the CHIP-8 instruction word, its field accessors and
// the decoding of a word into a closed set of instruction kinds.
package opcode

import "fmt"

// Size is the size of a CHIP-8 instruction in bytes.
const Size = 2

// Opcode is a raw 16-bit CHIP-8 instruction word as fetched from memory.
type Opcode uint16

// New returns the opcode formed by the two given bytes in big-endian order.
func New(high, low byte) Opcode {
	return Opcode(uint16(high)<<8 | uint16(low))
}

// Mode returns the top nibble that selects the instruction family.
func (o Opcode) Mode() uint8 {
	return uint8(o >> 12)
}

// X returns the first register operand nibble.
func (o Opcode) X() uint8 {
	return uint8(o>>8) & 0xF
}

// Y returns the second register operand nibble.
func (o Opcode) Y() uint8 {
	return uint8(o>>4) & 0xF
}

// Z returns the lowest nibble.
func (o Opcode) Z() uint8 {
	return uint8(o) & 0xF
}

// Num returns the low byte.
func (o Opcode) Num() uint8 {
	return uint8(o)
}

// Addr returns the low 12 bits.
func (o Opcode) Addr() uint16 {
	return uint16(o) & 0xFFF
}

func (o Opcode) String() string {
	return fmt.Sprintf("0x%04X", uint16(o))
}
