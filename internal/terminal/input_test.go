package terminal

import (
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrogolib/assert"
)

func TestKeyInput_PressAndExpire(t *testing.T) {
	start := time.Unix(0, 0)
	input := newKeyInput(keypad.DefaultLayout, 100*time.Millisecond)

	event, ok := input.press('w', start)
	assert.True(t, ok)
	assert.Equal(t, keypad.KeyEvent{Key: 0x5, Pressed: true, Mask: 1 << 0x5}, event)

	next, ok := input.nextRelease()
	assert.True(t, ok)
	assert.Equal(t, start.Add(100*time.Millisecond), next)

	assert.Len(t, input.expire(start.Add(99*time.Millisecond)), 0)

	events := input.expire(start.Add(100 * time.Millisecond))
	assert.Equal(t, []keypad.KeyEvent{{Key: 0x5, Pressed: false, Mask: 0}}, events)

	_, ok = input.nextRelease()
	assert.False(t, ok)
}

func TestKeyInput_RepeatExtendsHold(t *testing.T) {
	start := time.Unix(0, 0)
	input := newKeyInput(keypad.DefaultLayout, 100*time.Millisecond)

	_, ok := input.press('v', start)
	assert.True(t, ok)

	// key repeat of the terminal, no new transition
	_, ok = input.press('V', start.Add(80*time.Millisecond))
	assert.False(t, ok)

	assert.Len(t, input.expire(start.Add(150*time.Millisecond)), 0)
	events := input.expire(start.Add(180 * time.Millisecond))
	assert.Equal(t, []keypad.KeyEvent{{Key: 0xF, Pressed: false, Mask: 0}}, events)
}

func TestKeyInput_ReleaseOrder(t *testing.T) {
	start := time.Unix(0, 0)
	input := newKeyInput(keypad.DefaultLayout, 100*time.Millisecond)

	_, ok := input.press('v', start) // key F
	assert.True(t, ok)
	event, ok := input.press('x', start.Add(10*time.Millisecond)) // key 0
	assert.True(t, ok)
	assert.Equal(t, uint16(1<<0xF|1<<0x0), event.Mask)

	events := input.expire(start.Add(time.Second))
	assert.Equal(t, []keypad.KeyEvent{
		{Key: 0xF, Pressed: false, Mask: 1 << 0x0},
		{Key: 0x0, Pressed: false, Mask: 0},
	}, events)
}

func TestKeyInput_UnmappedCharacter(t *testing.T) {
	input := newKeyInput(keypad.DefaultLayout, DefaultHold)

	_, ok := input.press('p', time.Unix(0, 0))
	assert.False(t, ok)
	_, ok = input.nextRelease()
	assert.False(t, ok)
}
