// Package memory provides the CHIP-8 main memory.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: built-in hexadecimal glyph sprites (16 glyphs of 5 bytes)
//	0x050-0x1FF: unused interpreter area
//	0x200-0xFFF: program space (3584 bytes)
package memory

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/opcode"
)

const (
	// Size is the number of addressable bytes.
	Size = 0x1000

	// ProgramStart is the address that programs are loaded to and start
	// execution at.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program that fits into memory.
	MaxProgramSize = Size - ProgramStart

	// GlyphSize is the number of bytes of a built-in glyph sprite.
	GlyphSize = 5
)

var (
	// ErrOutOfBounds is returned for any access beyond the end of memory.
	ErrOutOfBounds = errors.New("memory access out of bounds")
	// ErrProgramTooLarge is returned when a program does not fit into the
	// program space.
	ErrProgramTooLarge = errors.New("program won't fit in memory")
)

var glyphs = [16 * GlyphSize]byte{
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

// Memory is the 4KB byte addressable CHIP-8 memory.
type Memory struct {
	data [Size]byte
}

// New returns a new memory with the glyph sprites in place.
func New() *Memory {
	m := &Memory{}
	copy(m.data[:], glyphs[:])
	return m
}

// Load copies the program into the program space.
func (m *Memory) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w (%d bytes, maximum %d)", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(m.data[ProgramStart:], program)
	return nil
}

// Fetch reads the big-endian instruction word at the given address.
func (m *Memory) Fetch(address uint16) (opcode.Opcode, error) {
	if int(address)+1 >= Size {
		return 0, fmt.Errorf("%w: fetching opcode at 0x%04X", ErrOutOfBounds, address)
	}
	return opcode.New(m.data[address], m.data[address+1]), nil
}

// Sprite returns length bytes starting at address. The returned slice
// references the memory and must not be retained.
func (m *Memory) Sprite(address uint16, length uint8) ([]byte, error) {
	end := int(address) + int(length)
	if end > Size {
		return nil, fmt.Errorf("%w: reading %d byte sprite at 0x%04X", ErrOutOfBounds, length, address)
	}
	return m.data[address:end], nil
}

// Get returns the byte at the given address.
func (m *Memory) Get(address uint16) (byte, error) {
	if int(address) >= Size {
		return 0, fmt.Errorf("%w: reading 0x%04X", ErrOutOfBounds, address)
	}
	return m.data[address], nil
}

// Set stores a byte at the given address.
func (m *Memory) Set(address uint16, value byte) error {
	if int(address) >= Size {
		return fmt.Errorf("%w: writing 0x%04X", ErrOutOfBounds, address)
	}
	m.data[address] = value
	return nil
}

// GlyphAddress returns the address of the built-in sprite for the low
// nibble of digit.
func GlyphAddress(digit uint8) uint16 {
	return uint16(digit&0xF) * GlyphSize
}
