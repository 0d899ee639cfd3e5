// Package machine provides the driver loop that runs the CHIP-8 interpreter,
// decrements its timers at 60 Hz and routes its diagnostics to the log sink.
package machine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

const (
	// TimerInterval is the period of the delay and sound timers.
	TimerInterval = time.Second / 60

	// DefaultIdle is the pause between two instructions.
	DefaultIdle = time.Millisecond
)

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source used for the timer cadence.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithIdle sets the pause between two instructions. A zero duration runs
// instructions back to back.
func WithIdle(idle time.Duration) Option {
	return func(m *Machine) {
		m.idle = idle
	}
}

// WithRendererDone stops the machine once the given channel is closed.
func WithRendererDone(done <-chan struct{}) Option {
	return func(m *Machine) {
		m.rendererDone = done
	}
}

// WithTrace enables debug logging of every executed instruction.
func WithTrace(trace bool) Option {
	return func(m *Machine) {
		m.trace = trace
	}
}

// WithTraceReport sends trace lines to the log sink instead of the logger.
// It is used while a terminal renderer owns the screen.
func WithTraceReport(report bool) Option {
	return func(m *Machine) {
		m.traceReport = report
	}
}

// Machine runs an interpreter until it halts, its renderer quits, a fatal
// error occurs or the context gets cancelled.
type Machine struct {
	cpu    *cpu.CPU
	logger *log.Logger
	logs   *Outlet[string]

	now          func() time.Time
	idle         time.Duration
	rendererDone <-chan struct{}
	trace        bool
	traceReport  bool
}

// New returns a machine driving the given interpreter. Diagnostics are sent
// to logs, if it is nil or disconnected they are written to the logger.
func New(logger *log.Logger, c *cpu.CPU, logs *Outlet[string], options ...Option) *Machine {
	m := &Machine{
		cpu:    c,
		logger: logger,
		logs:   logs,
		now:    time.Now,
		idle:   DefaultIdle,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Run executes instructions until the program halts or the renderer quits,
// both return nil. Cancelling the context returns the context error, a
// fatal interpreter error is returned as is. An instruction that was started
// always runs to completion.
func (m *Machine) Run(ctx context.Context) error {
	lastTick := m.now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.rendererDone:
			m.logger.Debug("Renderer stopped, stopping execution")
			return nil
		default:
		}

		var traced opcode.Instruction
		if m.trace {
			traced = m.traceInstruction()
		}

		status, err := m.cpu.Step()
		switch {
		case err != nil:
			if err = m.handleError(err); err != nil {
				return err
			}
		case status == cpu.Halted:
			m.Report("Execution stopped")
			return nil
		case m.trace && traced.Kind.IsBranch():
			m.traceBranch()
		}

		if now := m.now(); now.Sub(lastTick) >= TimerInterval {
			m.cpu.Tick()
			lastTick = now
		}

		if m.idle > 0 {
			time.Sleep(m.idle)
		}
	}
}

// handleError reports an interpreter error and returns it if execution can
// not continue.
func (m *Machine) handleError(err error) error {
	var decodeErr *cpu.DecodeError
	if errors.As(err, &decodeErr) {
		m.Report(fmt.Sprintf("Invalid opcode %s at 0x%04X: %s",
			decodeErr.Opcode, decodeErr.Address, disasm.Describe(uint16(decodeErr.Opcode))))
		m.cpu.Skip()
		return nil
	}

	if errors.Is(err, cpu.ErrFrameSink) && m.rendererStopped() {
		return nil
	}

	m.Report(err.Error())
	return fmt.Errorf("executing instruction at 0x%04X: %w", m.cpu.PC(), err)
}

func (m *Machine) rendererStopped() bool {
	if m.rendererDone == nil {
		return false
	}
	select {
	case <-m.rendererDone:
		return true
	default:
		return false
	}
}

// Report sends a diagnostic message to the log sink.
func (m *Machine) Report(msg string) {
	if m.logs != nil {
		if err := m.logs.Send(msg); err == nil {
			return
		}
	}
	m.logger.Info(msg)
}

// traceInstruction traces the instruction at the program counter and
// returns it.
func (m *Machine) traceInstruction() opcode.Instruction {
	ins, err := m.cpu.Peek()
	if err != nil {
		return opcode.Instruction{}
	}
	text := disasm.Format(ins)
	if m.traceReport {
		m.Report(fmt.Sprintf("0x%04X %s", m.cpu.PC(), text))
		return ins
	}
	m.logger.Debug("Executing",
		log.Hex("pc", m.cpu.PC()),
		log.Stringer("opcode", ins.Opcode),
		log.String("instruction", text))
	return ins
}

// traceBranch traces the target of a branch instruction that was executed.
func (m *Machine) traceBranch() {
	if m.traceReport {
		m.Report(fmt.Sprintf("-> 0x%04X", m.cpu.PC()))
		return
	}
	m.logger.Debug("Branch taken", log.Hex("target", m.cpu.PC()))
}
