// Package display provides the CHIP-8 monochrome framebuffer.
package display

import (
	"errors"
	"fmt"
)

const (
	// Width is the number of pixels per row.
	Width = 64
	// Height is the number of rows.
	Height = 32
)

// ErrOutOfBounds is returned when a sprite row would be drawn below the last
// framebuffer row.
var ErrOutOfBounds = errors.New("draw beyond framebuffer")

// Frame is a complete framebuffer snapshot. Each row is packed into a
// uint64 with the most significant bit being the leftmost pixel, row 0 is the
// top row.
type Frame [Height]uint64

// Pixel returns whether the pixel at column x and row y is lit.
func (f *Frame) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return f[y]&(1<<(Width-1-x)) != 0
}

// Framebuffer is the framebuffer owned by the interpreter.
type Framebuffer struct {
	rows Frame

	// clip drops sprite rows below the last row instead of failing
	clip bool
}

// New returns a cleared framebuffer. If clip is set, sprite rows that would
// be drawn below the last row are silently dropped, otherwise they cause an
// ErrOutOfBounds error.
func New(clip bool) *Framebuffer {
	return &Framebuffer{clip: clip}
}

// Clear turns all pixels off.
func (fb *Framebuffer) Clear() {
	fb.rows = Frame{}
}

// Draw XORs the sprite onto the framebuffer at column x and row y. Every
// sprite byte is left aligned and shifted right by x, bits shifted past the
// last column are dropped. It returns whether any lit pixel was turned off.
//
// The bounds check is done before modifying any row, a failed draw leaves the
// framebuffer unchanged.
func (fb *Framebuffer) Draw(x, y uint8, sprite []byte) (bool, error) {
	rows := len(sprite)
	if rows > 0 && int(y)+rows > Height {
		if !fb.clip {
			return false, fmt.Errorf("%w: %d rows at row %d", ErrOutOfBounds, rows, y)
		}
		rows = max(Height-int(y), 0)
	}

	collision := false
	for i, b := range sprite[:rows] {
		row := &fb.rows[int(y)+i]
		before := *row
		*row ^= (uint64(b) << (Width - 8)) >> x
		if before&^*row != 0 {
			collision = true
		}
	}
	return collision, nil
}

// Snapshot returns a copy of the current framebuffer content.
func (fb *Framebuffer) Snapshot() Frame {
	return fb.rows
}
