// Package keypad provides the shared CHIP-8 key state that bridges the input
// collaborator and the interpreter.
//
// The state is written exclusively by the input side and read by the
// interpreter. Every access takes the lock for a single read or a single
// replacement, the lock is never held across a blocking operation.
package keypad

import (
	"fmt"
	"sync"
)

// Keys is the number of keys of the CHIP-8 hexadecimal keypad.
const Keys = 16

// KeyEvent is a single key transition.
type KeyEvent struct {
	Key     uint8  // logical key index 0x0-0xF
	Pressed bool   // true for a press, false for a release
	Mask    uint16 // bitmask of all pressed keys after the transition
}

func (e KeyEvent) String() string {
	transition := "released"
	if e.Pressed {
		transition = "pressed"
	}
	return fmt.Sprintf("key %X %s", e.Key, transition)
}

// Snapshot is a consistent copy of the shared key state.
type Snapshot struct {
	Mask uint16   // live bitmask, bit i set while key i is held
	Last KeyEvent // most recent transition
	Seq  uint64   // number of transitions applied so far

	// LastPress is the most recent press, PressSeq the transition count at
	// the time it was applied. A press followed by its release between two
	// reads is still visible here.
	LastPress KeyEvent
	PressSeq  uint64
}

// State is the mutex guarded shared key state.
type State struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewState returns a state with no keys pressed.
func NewState() *State {
	return &State{}
}

// Apply publishes a key transition.
func (s *State) Apply(event KeyEvent) {
	s.mu.Lock()
	s.snap.Mask = event.Mask
	s.snap.Last = event
	s.snap.Seq++
	if event.Pressed {
		s.snap.LastPress = event
		s.snap.PressSeq = s.snap.Seq
	}
	s.mu.Unlock()
}

// Mask returns the bitmask of pressed keys.
func (s *State) Mask() uint16 {
	s.mu.Lock()
	mask := s.snap.Mask
	s.mu.Unlock()
	return mask
}

// Pressed returns whether the given key is currently held. Values outside of
// the keypad range are never pressed.
func (s *State) Pressed(key uint8) bool {
	if key >= Keys {
		return false
	}
	return s.Mask()&(1<<key) != 0
}

// Snapshot returns a copy of the complete state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()
	return snap
}

// Tracker turns key presses and releases of the input device into key
// events. It is owned by a single input goroutine and is not safe for
// concurrent use.
type Tracker struct {
	mask uint16
}

// Press marks the key as held. It returns false if the key was already held
// and no transition happened.
func (t *Tracker) Press(key uint8) (KeyEvent, bool) {
	return t.transition(key, true)
}

// Release marks the key as released. It returns false if the key was not
// held and no transition happened.
func (t *Tracker) Release(key uint8) (KeyEvent, bool) {
	return t.transition(key, false)
}

func (t *Tracker) transition(key uint8, pressed bool) (KeyEvent, bool) {
	if key >= Keys {
		return KeyEvent{}, false
	}
	bit := uint16(1) << key
	if (t.mask&bit != 0) == pressed {
		return KeyEvent{}, false
	}
	t.mask ^= bit
	return KeyEvent{Key: key, Pressed: pressed, Mask: t.mask}, true
}
