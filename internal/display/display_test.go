package display

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDraw(t *testing.T) {
	fb := New(false)

	collision, err := fb.Draw(0, 0, []byte{0xF0, 0x90})
	assert.NoError(t, err)
	assert.False(t, collision)

	frame := fb.Snapshot()
	assert.Equal(t, uint64(0xF0)<<56, frame[0])
	assert.Equal(t, uint64(0x90)<<56, frame[1])
	assert.True(t, frame.Pixel(0, 0))
	assert.True(t, frame.Pixel(3, 0))
	assert.False(t, frame.Pixel(4, 0))
	assert.False(t, frame.Pixel(1, 1))
}

func TestDraw_HorizontalOffset(t *testing.T) {
	fb := New(false)

	_, err := fb.Draw(60, 2, []byte{0xFF})
	assert.NoError(t, err)

	frame := fb.Snapshot()
	// the 4 bits beyond column 63 are dropped, no wrap around
	assert.Equal(t, uint64(0x0F), frame[2])
	assert.True(t, frame.Pixel(63, 2))
	assert.False(t, frame.Pixel(0, 2))

	_, err = fb.Draw(64, 3, []byte{0xFF})
	assert.NoError(t, err)
	frame = fb.Snapshot()
	assert.Equal(t, uint64(0), frame[3])
}

func TestDraw_XORSelfInverse(t *testing.T) {
	fb := New(false)
	_, err := fb.Draw(5, 0, []byte{0x81})
	assert.NoError(t, err)
	before := fb.Snapshot()

	sprite := []byte{0x3C, 0x42, 0x81}
	collision, err := fb.Draw(10, 7, sprite)
	assert.NoError(t, err)
	assert.False(t, collision)

	collision, err = fb.Draw(10, 7, sprite)
	assert.NoError(t, err)
	assert.True(t, collision)
	assert.Equal(t, before, fb.Snapshot())
}

func TestDraw_VerticalBounds(t *testing.T) {
	fb := New(false)

	_, err := fb.Draw(0, 30, []byte{0xFF, 0xFF})
	assert.NoError(t, err)

	_, err = fb.Draw(0, 31, []byte{0x0F, 0xFF})
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	// failed draw does not modify the framebuffer
	assert.Equal(t, uint64(0xFF)<<56, fb.Snapshot()[31])

	_, err = fb.Draw(0, 40, nil)
	assert.NoError(t, err)
}

func TestDraw_Clip(t *testing.T) {
	fb := New(true)

	collision, err := fb.Draw(0, 31, []byte{0x80, 0x80, 0x80})
	assert.NoError(t, err)
	assert.False(t, collision)

	frame := fb.Snapshot()
	assert.True(t, frame.Pixel(0, 31))
	assert.False(t, frame.Pixel(0, 0))

	_, err = fb.Draw(0, 200, []byte{0xFF})
	assert.NoError(t, err)
}

func TestClear(t *testing.T) {
	fb := New(false)
	_, err := fb.Draw(0, 0, []byte{0xFF, 0xFF, 0xFF})
	assert.NoError(t, err)

	fb.Clear()
	frame := fb.Snapshot()
	for row := range frame {
		assert.Equal(t, uint64(0), frame[row])
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	fb := New(false)
	frame := fb.Snapshot()

	_, err := fb.Draw(0, 0, []byte{0xFF})
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), frame[0])
}
