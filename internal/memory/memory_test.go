package memory

import (
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/assert"
)

func TestNew_Glyphs(t *testing.T) {
	m := New()

	// glyph 0 and glyph F
	zero, err := m.Sprite(GlyphAddress(0), GlyphSize)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}, zero)

	f, err := m.Sprite(GlyphAddress(0xF), GlyphSize)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x80, 0xF0, 0x80, 0x80}, f)

	// area between glyphs and program space is zeroed
	b, err := m.Get(0x50)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"small", 4, false},
		{"maximum size", MaxProgramSize, false},
		{"one byte too large", MaxProgramSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := make([]byte, tt.size)
			for i := range program {
				program[i] = byte(i + 1)
			}

			m := New()
			err := m.Load(program)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrProgramTooLarge))
				assert.ErrorContains(t, err, "3585 bytes")
				return
			}
			assert.NoError(t, err)
			if tt.size > 0 {
				first, err := m.Get(ProgramStart)
				assert.NoError(t, err)
				assert.Equal(t, byte(1), first)
			}
		})
	}
}

func TestLoad_KeepsGlyphs(t *testing.T) {
	m := New()
	assert.NoError(t, m.Load([]byte{0xAA, 0xBB}))

	b, err := m.Get(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xF0), b)
	b, err = m.Get(ProgramStart - 1)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestFetch(t *testing.T) {
	m := New()
	assert.NoError(t, m.Load([]byte{0x6A, 0x3C, 0x12, 0x00}))

	op, err := m.Fetch(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, opcode.Opcode(0x6A3C), op)

	op, err = m.Fetch(ProgramStart + 2)
	assert.NoError(t, err)
	assert.Equal(t, opcode.Opcode(0x1200), op)

	_, err = m.Fetch(Size - 2)
	assert.NoError(t, err)

	_, err = m.Fetch(Size - 1)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	_, err = m.Fetch(0xFFFF)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestSprite_Bounds(t *testing.T) {
	m := New()

	data, err := m.Sprite(Size-15, 15)
	assert.NoError(t, err)
	assert.Len(t, data, 15)

	data, err = m.Sprite(0x300, 0)
	assert.NoError(t, err)
	assert.Len(t, data, 0)

	_, err = m.Sprite(Size-14, 15)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestGetSet(t *testing.T) {
	m := New()

	assert.NoError(t, m.Set(0x300, 0x42))
	b, err := m.Get(0x300)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x42), b)

	assert.True(t, errors.Is(m.Set(Size, 1), ErrOutOfBounds))
	_, err = m.Get(Size)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestGlyphAddress(t *testing.T) {
	assert.Equal(t, uint16(0), GlyphAddress(0))
	assert.Equal(t, uint16(50), GlyphAddress(0xA))
	assert.Equal(t, uint16(75), GlyphAddress(0xFF))
}
