package machine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type testSetup struct {
	machine *Machine
	cpu     *cpu.CPU
	keys    *keypad.State
	outlets Outlets
}

func newTestMachine(t *testing.T, words []uint16, options ...Option) testSetup {
	t.Helper()

	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	mem := memory.New()
	assert.NoError(t, mem.Load(program))

	outlets := NewOutlets()
	keys := keypad.NewState()
	c := cpu.New(mem, keys, cpu.WithFrameSink(outlets.Frames))

	options = append([]Option{WithIdle(0)}, options...)
	m := New(log.NewTestLogger(t), c, outlets.Log, options...)
	return testSetup{machine: m, cpu: c, keys: keys, outlets: outlets}
}

// fakeClock returns a clock that advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func drainLog(o *Outlet[string]) []string {
	var msgs []string
	for {
		select {
		case msg := <-o.C():
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestRun_Halt(t *testing.T) {
	s := newTestMachine(t, []uint16{0x6A3C, 0x0000})

	err := s.machine.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"Execution stopped"}, drainLog(s.outlets.Log))
}

func TestRun_DecodeErrorContinues(t *testing.T) {
	s := newTestMachine(t, []uint16{0x5121, 0x8128, 0x0000})

	err := s.machine.Run(context.Background())
	assert.NoError(t, err)

	msgs := drainLog(s.outlets.Log)
	assert.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "Invalid opcode 0x5121 at 0x0200")
	assert.Contains(t, msgs[1], "Invalid opcode 0x8128 at 0x0202")
	assert.Equal(t, "Execution stopped", msgs[2])
}

func TestRun_FatalError(t *testing.T) {
	s := newTestMachine(t, []uint16{0x6000, 0x00EE})

	err := s.machine.Run(context.Background())
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
	assert.ErrorContains(t, err, "0x0202")

	msgs := drainLog(s.outlets.Log)
	assert.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "stack underflow")
}

func TestRun_RendererDone(t *testing.T) {
	done := make(chan struct{})
	close(done)
	s := newTestMachine(t, []uint16{0x1200}, WithRendererDone(done))

	err := s.machine.Run(context.Background())
	assert.NoError(t, err)
}

func TestRun_ContextCancel(t *testing.T) {
	s := newTestMachine(t, []uint16{0x1200})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.machine.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRun_Frames(t *testing.T) {
	s := newTestMachine(t, []uint16{
		0xA000, // I = glyph 0
		0xD005,
		0xA005, // I = glyph 1
		0xD005,
		0x0000,
	})

	assert.NoError(t, s.machine.Run(context.Background()))

	first := <-s.outlets.Frames.C()
	second := <-s.outlets.Frames.C()
	assert.Equal(t, uint64(0xF0)<<56, first[0])
	// glyph 0 row 0 is 0xF0, glyph 1 row 0 is 0x20
	assert.Equal(t, uint64(0xF0^0x20)<<56, second[0])

	select {
	case <-s.outlets.Frames.C():
		t.Fatal("unexpected frame")
	default:
	}
}

func TestRun_FrameConsumerGone(t *testing.T) {
	s := newTestMachine(t, []uint16{0xD001, 0x0000})
	s.outlets.Frames.Close()

	err := s.machine.Run(context.Background())
	assert.True(t, errors.Is(err, cpu.ErrFrameSink))
	assert.True(t, errors.Is(err, ErrDisconnected))
}

func TestHandleError_FrameConsumerGoneAfterQuit(t *testing.T) {
	done := make(chan struct{})
	s := newTestMachine(t, []uint16{0x1200}, WithRendererDone(done))
	sinkErr := fmt.Errorf("%w: %w", cpu.ErrFrameSink, ErrDisconnected)

	assert.Error(t, s.machine.handleError(sinkErr))
	close(done)
	assert.NoError(t, s.machine.handleError(sinkErr))
}

func TestRun_TimerTicks(t *testing.T) {
	s := newTestMachine(t, []uint16{
		0x6005, // V0 = 5
		0xF015, // DT = V0
		0xF107, // 0x204: V1 = DT
		0x3100, // skip if V1 == 0
		0x1204, // loop
		0x0000,
	}, WithClock(fakeClock(TimerInterval)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.machine.Run(ctx))
}

func TestRun_TimerCadence(t *testing.T) {
	// the clock advances a little more than a quarter interval per call, so
	// the timer ticks on every fourth instruction
	s := newTestMachine(t, []uint16{
		0x6002, // V0 = 2
		0xF015, // DT = V0
		0x7201, // 0x204: V2 += 1
		0xF107, // V1 = DT
		0x3100, // skip if V1 == 0
		0x1204, // loop
		0x0000,
	}, WithClock(fakeClock(TimerInterval/4+1)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.machine.Run(ctx))
	assert.Equal(t, uint8(3), s.cpu.V(2))
	assert.Equal(t, uint8(0), s.cpu.DelayTimer())
}

func TestRun_TimersTickWhileWaitingForKey(t *testing.T) {
	s := newTestMachine(t, []uint16{
		0x6003, // V0 = 3
		0xF015, // DT = V0
		0xF20A, // wait for key into V2
		0xF107, // V1 = DT
		0x3100, // skip if V1 == 0
		0x00EE, // stack underflow, fails the run
		0x0000,
	}, WithClock(fakeClock(TimerInterval)))

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.keys.Apply(keypad.KeyEvent{Key: 0xC, Pressed: true, Mask: 1 << 0xC})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.machine.Run(ctx))
}

func TestRun_TraceReport(t *testing.T) {
	s := newTestMachine(t, []uint16{0x6A3C, 0x1204, 0x0000},
		WithTrace(true), WithTraceReport(true))

	assert.NoError(t, s.machine.Run(context.Background()))
	assert.Equal(t, []string{
		"0x0200 " + disasm.Format(opcode.Decode(0x6A3C)),
		"0x0202 " + disasm.Format(opcode.Decode(0x1204)),
		"-> 0x0204",
		"0x0204 " + disasm.Format(opcode.Decode(0x0000)),
		"Execution stopped",
	}, drainLog(s.outlets.Log))
}

func TestRun_TraceToLogger(t *testing.T) {
	s := newTestMachine(t, []uint16{0x1202, 0x0000}, WithTrace(true))

	assert.NoError(t, s.machine.Run(context.Background()))
	assert.Equal(t, []string{"Execution stopped"}, drainLog(s.outlets.Log))
}

func TestReport_LogConsumerGone(t *testing.T) {
	s := newTestMachine(t, []uint16{0x0000})
	s.outlets.Log.Close()

	// falls back to the logger
	assert.NoError(t, s.machine.Run(context.Background()))
}

func TestOutlet(t *testing.T) {
	o := NewOutlet[display.Frame](1)

	assert.NoError(t, o.Send(display.Frame{1}))
	frame := <-o.C()
	assert.Equal(t, uint64(1), frame[0])

	o.Close()
	o.Close()
	assert.True(t, errors.Is(o.Send(display.Frame{}), ErrDisconnected))

	select {
	case <-o.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestOutlet_BlockedSendFailsOnClose(t *testing.T) {
	o := NewOutlet[string](0)

	errs := make(chan error, 1)
	go func() {
		errs <- o.Send("blocked")
	}()

	time.Sleep(10 * time.Millisecond)
	o.Close()
	assert.True(t, errors.Is(<-errs, ErrDisconnected))
}
