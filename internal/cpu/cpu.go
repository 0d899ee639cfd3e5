// Package cpu provides the CHIP-8 interpreter: the register file, the call
// stack, the timers and the fetch/decode/execute step.
package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
)

const (
	// Registers is the number of general purpose registers V0-VF.
	Registers = 16
	// StackDepth is the maximum number of nested subroutine calls.
	StackDepth = 16
	// FlagRegister is the register that receives carry, borrow and collision
	// flags.
	FlagRegister = 0xF
)

var (
	// ErrUnknownOpcode is wrapped by DecodeError.
	ErrUnknownOpcode = errors.New("invalid opcode")
	// ErrStackOverflow is returned by a call beyond the maximum stack depth.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrFrameSink is returned when a drawn frame could not be delivered.
	ErrFrameSink = errors.New("display error")
)

// DecodeError is returned for an instruction word that matches no known
// instruction. The program counter still points to the failed instruction,
// the caller decides whether to Skip it.
type DecodeError struct {
	Address uint16
	Opcode  opcode.Opcode
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s at 0x%04X", ErrUnknownOpcode, e.Opcode, e.Address)
}

func (e *DecodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// Status is the outcome of a single Step.
type Status int

// Step outcomes.
const (
	Running Status = iota // instruction executed, continue
	Halted                // halt instruction reached
	Waiting               // waiting for a key press, step again
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Waiting:
		return "waiting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// FrameSink receives a copy of the framebuffer after every draw instruction.
type FrameSink interface {
	Send(frame display.Frame) error
}

// Quirks select between behaviors that differ across CHIP-8 interpreters.
type Quirks struct {
	// ShiftVx shifts Vx in place for 8xy6 and 8xyE instead of shifting Vy
	// into Vx.
	ShiftVx bool
	// ClipSprites drops sprite rows below the last framebuffer row instead
	// of failing the draw.
	ClipSprites bool
	// LoadStoreX limits Fx55 and Fx65 to the registers V0-Vx instead of all
	// 16 registers.
	LoadStoreX bool
}

// Option configures a CPU.
type Option func(*CPU)

// WithQuirks sets the interpreter quirks.
func WithQuirks(quirks Quirks) Option {
	return func(c *CPU) {
		c.quirks = quirks
	}
}

// WithRandom sets the random source of the Cxnn instruction.
func WithRandom(random func() uint8) Option {
	return func(c *CPU) {
		c.random = random
	}
}

// WithFrameSink sets the receiver of drawn frames.
func WithFrameSink(sink FrameSink) Option {
	return func(c *CPU) {
		c.frames = sink
	}
}

// CPU is the CHIP-8 interpreter state. It is not safe for concurrent use,
// Step and Tick have to be called from the same goroutine.
type CPU struct {
	v  [Registers]uint8
	i  uint16
	pc uint16
	dt uint8
	st uint8

	stack [StackDepth]uint16
	sp    uint8

	mem    *memory.Memory
	fb     *display.Framebuffer
	keys   *keypad.State
	frames FrameSink
	random func() uint8
	quirks Quirks

	// wait-for-key progress of the instruction at pc
	waiting bool
	waitSeq uint64
}

// New returns an interpreter that executes the program in mem, starting at
// the program start address.
func New(mem *memory.Memory, keys *keypad.State, options ...Option) *CPU {
	c := &CPU{
		pc:     memory.ProgramStart,
		mem:    mem,
		keys:   keys,
		random: randomByte,
	}
	for _, option := range options {
		option(c)
	}
	c.fb = display.New(c.quirks.ClipSprites)
	return c
}

func randomByte() uint8 {
	return uint8(rand.Uint32())
}

// Peek decodes the instruction at the program counter without executing it.
func (c *CPU) Peek() (opcode.Instruction, error) {
	op, err := c.mem.Fetch(c.pc)
	if err != nil {
		return opcode.Instruction{}, err
	}
	return opcode.Decode(op), nil
}

// Step executes the instruction at the program counter.
func (c *CPU) Step() (Status, error) {
	ins, err := c.Peek()
	if err != nil {
		return Running, err
	}
	return c.execute(ins)
}

// Skip advances the program counter to the next instruction. It is used to
// continue after a DecodeError.
func (c *CPU) Skip() {
	c.waiting = false
	c.pc += opcode.Size
}

// Tick decrements the delay and sound timers, both stop at 0.
func (c *CPU) Tick() {
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
	}
}

// PC returns the program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// V returns the value of register Vx.
func (c *CPU) V(x uint8) uint8 {
	return c.v[x&0xF]
}

// I returns the index register.
func (c *CPU) I() uint16 {
	return c.i
}

// DelayTimer returns the delay timer.
func (c *CPU) DelayTimer() uint8 {
	return c.dt
}

// SoundTimer returns the sound timer.
func (c *CPU) SoundTimer() uint8 {
	return c.st
}

// StackDepth returns the number of active subroutine calls.
func (c *CPU) StackDepth() int {
	return int(c.sp)
}

// Frame returns a copy of the framebuffer.
func (c *CPU) Frame() display.Frame {
	return c.fb.Snapshot()
}

func (c *CPU) push(address uint16) error {
	if int(c.sp) >= StackDepth {
		return fmt.Errorf("%w: call at 0x%04X", ErrStackOverflow, c.pc)
	}
	c.stack[c.sp] = address
	c.sp++
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, fmt.Errorf("%w: return at 0x%04X", ErrStackUnderflow, c.pc)
	}
	c.sp--
	return c.stack[c.sp], nil
}

func flag(set bool) uint8 {
	if set {
		return 1
	}
	return 0
}
