package terminal

import (
	"slices"
	"time"

	"github.com/retroenv/retrochip8/internal/keypad"
)

// DefaultHold is how long a key counts as held after its last press.
const DefaultHold = 150 * time.Millisecond

// keyInput turns characters typed on a terminal into keypad transitions.
// Terminals only report presses, a release is generated once no press of the
// same key was seen for the hold duration. Repeated presses while a key is
// held extend the hold without producing a transition.
type keyInput struct {
	layout  keypad.Layout
	hold    time.Duration
	tracker keypad.Tracker
	release [keypad.Keys]time.Time // zero while the key is not held
}

func newKeyInput(layout keypad.Layout, hold time.Duration) *keyInput {
	return &keyInput{
		layout: layout,
		hold:   hold,
	}
}

// press handles a character typed at the given time.
func (k *keyInput) press(ch rune, now time.Time) (keypad.KeyEvent, bool) {
	key, ok := k.layout.Key(ch)
	if !ok {
		return keypad.KeyEvent{}, false
	}
	k.release[key] = now.Add(k.hold)
	return k.tracker.Press(key)
}

// expire releases all keys whose hold elapsed, earliest first.
func (k *keyInput) expire(now time.Time) []keypad.KeyEvent {
	var expired []uint8
	for key, deadline := range k.release {
		if deadline.IsZero() || now.Before(deadline) {
			continue
		}
		expired = append(expired, uint8(key))
	}
	slices.SortStableFunc(expired, func(a, b uint8) int {
		return k.release[a].Compare(k.release[b])
	})

	events := make([]keypad.KeyEvent, 0, len(expired))
	for _, key := range expired {
		k.release[key] = time.Time{}
		if event, ok := k.tracker.Release(key); ok {
			events = append(events, event)
		}
	}
	return events
}

// nextRelease returns the earliest pending release time.
func (k *keyInput) nextRelease() (time.Time, bool) {
	var next time.Time
	for _, deadline := range k.release {
		if deadline.IsZero() {
			continue
		}
		if next.IsZero() || deadline.Before(next) {
			next = deadline
		}
	}
	return next, !next.IsZero()
}
