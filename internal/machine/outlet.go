package machine

import (
	"errors"
	"sync"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
)

// ErrDisconnected is returned when sending to an outlet whose consumer has
// stopped.
var ErrDisconnected = errors.New("outlet consumer disconnected")

// DefaultOutletSize is the buffer size of outlets created by NewOutlets.
const DefaultOutletSize = 64

// Outlet is a buffered channel with a single producer and a consumer that
// can signal that it stopped receiving. Sends block while the buffer is
// full and the consumer is alive, and fail once the consumer is gone.
type Outlet[T any] struct {
	ch   chan T
	done chan struct{}
	once sync.Once
}

// NewOutlet returns an outlet with the given buffer size.
func NewOutlet[T any](size int) *Outlet[T] {
	return &Outlet[T]{
		ch:   make(chan T, size),
		done: make(chan struct{}),
	}
}

// Send delivers a value to the consumer.
func (o *Outlet[T]) Send(value T) error {
	select {
	case <-o.done:
		return ErrDisconnected
	default:
	}

	select {
	case o.ch <- value:
		return nil
	case <-o.done:
		return ErrDisconnected
	}
}

// C returns the receive side of the outlet.
func (o *Outlet[T]) C() <-chan T {
	return o.ch
}

// Close is called by the consumer when it stops receiving. It is safe to
// call more than once.
func (o *Outlet[T]) Close() {
	o.once.Do(func() {
		close(o.done)
	})
}

// Done is closed once the consumer stopped receiving.
func (o *Outlet[T]) Done() <-chan struct{} {
	return o.done
}

// Outlets bundles the channels that connect the machine to its
// collaborators.
type Outlets struct {
	Frames *Outlet[display.Frame]   // interpreter to renderer
	Keys   *Outlet[keypad.KeyEvent] // input to renderer
	Log    *Outlet[string]          // interpreter and driver to log sink
}

// NewOutlets returns all outlets with the default buffer size.
func NewOutlets() Outlets {
	return Outlets{
		Frames: NewOutlet[display.Frame](DefaultOutletSize),
		Keys:   NewOutlet[keypad.KeyEvent](DefaultOutletSize),
		Log:    NewOutlet[string](DefaultOutletSize),
	}
}
