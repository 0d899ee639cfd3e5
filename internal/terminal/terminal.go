// Package terminal implements the renderer and keyboard input of the
// interpreter on a text terminal using termbox.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// Option configures a Terminal.
type Option func(*Terminal)

// WithHold sets how long a key counts as held after its last press.
func WithHold(hold time.Duration) Option {
	return func(t *Terminal) {
		t.hold = hold
	}
}

// WithLayout sets the mapping of keyboard characters to keypad keys.
func WithLayout(layout keypad.Layout) Option {
	return func(t *Terminal) {
		t.layout = layout
	}
}

// Terminal shows the frames, log messages and keypad state of a running
// machine and feeds keyboard input into the shared key state. It consumes
// the frame, key event and log outlets and closes them when it stops.
type Terminal struct {
	logger  *log.Logger
	outlets machine.Outlets
	keys    *keypad.State

	hold   time.Duration
	layout keypad.Layout
	now    func() time.Time

	done     chan struct{}
	doneOnce sync.Once
	quit     chan struct{}
	quitOnce sync.Once
	resized  chan struct{}

	// set by the input goroutine, read after it finished
	inputErr error
}

// New returns a terminal for the given outlets and key state.
func New(logger *log.Logger, outlets machine.Outlets, keys *keypad.State, options ...Option) *Terminal {
	t := &Terminal{
		logger:  logger,
		outlets: outlets,
		keys:    keys,
		hold:    DefaultHold,
		layout:  keypad.DefaultLayout,
		now:     time.Now,
		done:    make(chan struct{}),
		quit:    make(chan struct{}),
		resized: make(chan struct{}, 1),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Done is closed once the terminal stopped.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// Run takes over the terminal until the user quits with '.', Esc or Ctrl+C
// or the context gets cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	defer t.stop()

	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	events := make(chan termbox.Event)
	stopInput := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		pollEvents(events, stopInput)
	}()
	go func() {
		defer wg.Done()
		t.handleInput(events, stopInput)
	}()

	err := t.render(ctx)

	// release blocked senders before waiting for the input goroutines
	t.stop()
	close(stopInput)
	termbox.Interrupt()
	wg.Wait()
	termbox.Close()

	// the logger writes to the terminal, only use it after closing termbox
	t.logger.Debug("Terminal stopped")
	if t.inputErr != nil {
		return errors.Join(err, fmt.Errorf("reading terminal input: %w", t.inputErr))
	}
	return err
}

func (t *Terminal) render(ctx context.Context) error {
	var v view
	if err := v.draw(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.quit:
			return nil
		case frame := <-t.outlets.Frames.C():
			v.frame = frame
		case event := <-t.outlets.Keys.C():
			v.mask = event.Mask
		case msg := <-t.outlets.Log.C():
			v.addLog(msg)
		case <-t.resized:
		}

		if err := v.draw(); err != nil {
			return err
		}
	}
}

// pollEvents forwards terminal events until the poll gets interrupted.
func pollEvents(events chan<- termbox.Event, stop <-chan struct{}) {
	for {
		event := termbox.PollEvent()
		if event.Type == termbox.EventInterrupt {
			return
		}
		select {
		case events <- event:
		case <-stop:
		}
	}
}

func (t *Terminal) handleInput(events <-chan termbox.Event, stop <-chan struct{}) {
	input := newKeyInput(t.layout, t.hold)
	timer := time.NewTimer(t.hold)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case event := <-events:
			t.handleEvent(input, event)
		case <-timer.C:
		}

		for _, event := range input.expire(t.now()) {
			t.publish(event)
		}
		if next, ok := input.nextRelease(); ok {
			timer.Reset(max(next.Sub(t.now()), 0))
		}
	}
}

func (t *Terminal) handleEvent(input *keyInput, event termbox.Event) {
	switch event.Type {
	case termbox.EventKey:
		if isQuitKey(event) {
			t.requestQuit()
			return
		}
		if keyEvent, ok := input.press(event.Ch, t.now()); ok {
			t.publish(keyEvent)
		}

	case termbox.EventResize:
		select {
		case t.resized <- struct{}{}:
		default:
		}

	case termbox.EventError:
		if t.inputErr == nil {
			t.inputErr = event.Err
		}
		t.requestQuit()
	}
}

func isQuitKey(event termbox.Event) bool {
	if event.Ch == '.' {
		return true
	}
	return event.Ch == 0 && (event.Key == termbox.KeyEsc || event.Key == termbox.KeyCtrlC)
}

// publish applies a transition to the shared key state and forwards it to
// the keypad display. Once the terminal stopped only the shared state is
// updated.
func (t *Terminal) publish(event keypad.KeyEvent) {
	t.keys.Apply(event)
	_ = t.outlets.Keys.Send(event)
}

func (t *Terminal) requestQuit() {
	t.quitOnce.Do(func() {
		close(t.quit)
	})
}

// stop signals Done before disconnecting the outlets, a producer that fails
// to send can check Done to tell a quit from a failure.
func (t *Terminal) stop() {
	t.doneOnce.Do(func() {
		close(t.done)
		t.outlets.Frames.Close()
		t.outlets.Keys.Close()
		t.outlets.Log.Close()
	})
}
