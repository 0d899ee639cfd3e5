package cpu

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
)

// execute runs a decoded instruction. Instructions that set the program
// counter themselves return early, all others fall through to the default
// increment at the end.
func (c *CPU) execute(ins opcode.Instruction) (Status, error) {
	x, y := ins.X(), ins.Y()

	switch ins.Kind {
	case opcode.Halt:
		return Halted, nil

	case opcode.ClearScreen:
		c.fb.Clear()

	case opcode.Return:
		address, err := c.pop()
		if err != nil {
			return Running, err
		}
		// the stack holds the address of the call instruction
		c.pc = address + opcode.Size
		return Running, nil

	case opcode.Jump:
		c.pc = ins.Addr()
		return Running, nil

	case opcode.Call:
		if err := c.push(c.pc); err != nil {
			return Running, err
		}
		c.pc = ins.Addr()
		return Running, nil

	case opcode.SkipEqNum:
		c.skipIf(c.v[x] == ins.Num())
	case opcode.SkipNeNum:
		c.skipIf(c.v[x] != ins.Num())
	case opcode.SkipEqReg:
		c.skipIf(c.v[x] == c.v[y])
	case opcode.SkipNeReg:
		c.skipIf(c.v[x] != c.v[y])

	case opcode.LoadNum:
		c.v[x] = ins.Num()
	case opcode.AddNum:
		c.v[x] += ins.Num()

	case opcode.LoadReg, opcode.Or, opcode.And, opcode.Xor, opcode.AddReg,
		opcode.Sub, opcode.ShiftRight, opcode.SubN, opcode.ShiftLeft:
		c.arithmetic(ins.Kind, x, y)

	case opcode.LoadIndex:
		c.i = ins.Addr()

	case opcode.JumpV0:
		c.pc = ins.Addr() + uint16(c.v[0])
		return Running, nil

	case opcode.Random:
		c.v[x] = c.random() & ins.Num()

	case opcode.Draw:
		return c.draw(x, y, ins.Z())

	case opcode.SkipKey:
		c.skipIf(c.keys.Pressed(c.v[x]))
	case opcode.SkipNoKey:
		c.skipIf(!c.keys.Pressed(c.v[x]))

	case opcode.WaitKey:
		if !c.waitKey(x) {
			return Waiting, nil
		}

	case opcode.LoadDelay, opcode.SetDelay, opcode.SetSound, opcode.AddIndex,
		opcode.LoadGlyph, opcode.StoreBCD, opcode.StoreRegs, opcode.LoadRegs:
		if err := c.misc(ins.Kind, x); err != nil {
			return Running, err
		}

	default:
		return Running, &DecodeError{Address: c.pc, Opcode: ins.Opcode}
	}

	c.pc += opcode.Size
	return Running, nil
}

func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc += opcode.Size
	}
}

// arithmetic executes the 8xyz family. Operands are read before the flag
// register is written, the result is written last.
func (c *CPU) arithmetic(kind opcode.Kind, x, y uint8) {
	vx, vy := c.v[x], c.v[y]

	switch kind {
	case opcode.LoadReg:
		c.v[x] = vy
	case opcode.Or:
		c.v[x] = vx | vy
	case opcode.And:
		c.v[x] = vx & vy
	case opcode.Xor:
		c.v[x] = vx ^ vy

	case opcode.AddReg:
		sum := uint16(vx) + uint16(vy)
		c.v[FlagRegister] = flag(sum > 0xFF)
		c.v[x] = uint8(sum)

	case opcode.Sub:
		c.v[FlagRegister] = flag(vx > vy)
		c.v[x] = vx - vy

	case opcode.SubN:
		c.v[FlagRegister] = flag(vy > vx)
		c.v[x] = vy - vx

	case opcode.ShiftRight:
		src := c.shiftSource(vx, vy)
		c.v[FlagRegister] = src & 1
		c.v[x] = src >> 1

	case opcode.ShiftLeft:
		src := c.shiftSource(vx, vy)
		c.v[FlagRegister] = src >> 7
		c.v[x] = src << 1
	}
}

func (c *CPU) shiftSource(vx, vy uint8) uint8 {
	if c.quirks.ShiftVx {
		return vx
	}
	return vy
}

// draw executes Dxyn and publishes the resulting frame. The program counter
// is advanced before the frame is sent, a failed delivery does not repeat
// the draw.
func (c *CPU) draw(x, y, rows uint8) (Status, error) {
	sprite, err := c.mem.Sprite(c.i, rows)
	if err != nil {
		return Running, err
	}
	collision, err := c.fb.Draw(c.v[x], c.v[y], sprite)
	if err != nil {
		return Running, err
	}
	c.v[FlagRegister] = flag(collision)
	c.pc += opcode.Size

	if c.frames == nil {
		return Running, nil
	}
	if err := c.frames.Send(c.fb.Snapshot()); err != nil {
		return Running, fmt.Errorf("%w: %w", ErrFrameSink, err)
	}
	return Running, nil
}

// waitKey executes one attempt of Fx0A and returns whether a key press was
// captured. The first attempt only records the current key transition
// count, a press applied after it resolves the wait even if the key was
// released again before this attempt. Releases alone are ignored.
func (c *CPU) waitKey(x uint8) bool {
	snap := c.keys.Snapshot()
	if !c.waiting {
		c.waiting = true
		c.waitSeq = snap.Seq
		return false
	}
	if snap.PressSeq <= c.waitSeq {
		return false
	}

	c.waiting = false
	c.v[x] = snap.LastPress.Key
	return true
}

// misc executes the non blocking part of the Fxnn family.
func (c *CPU) misc(kind opcode.Kind, x uint8) error {
	switch kind {
	case opcode.LoadDelay:
		c.v[x] = c.dt
	case opcode.SetDelay:
		c.dt = c.v[x]
	case opcode.SetSound:
		c.st = c.v[x]
	case opcode.AddIndex:
		c.i += uint16(c.v[x])
	case opcode.LoadGlyph:
		c.i = memory.GlyphAddress(c.v[x])

	case opcode.StoreBCD:
		value := c.v[x]
		return c.store([]byte{value / 100, value / 10 % 10, value % 10})

	case opcode.StoreRegs:
		return c.store(c.v[:c.transferCount(x)])

	case opcode.LoadRegs:
		count := c.transferCount(x)
		data, err := c.mem.Sprite(c.i, count)
		if err != nil {
			return err
		}
		copy(c.v[:count], data)
	}
	return nil
}

// transferCount returns the number of registers that Fx55 and Fx65 move.
func (c *CPU) transferCount(x uint8) uint8 {
	if c.quirks.LoadStoreX {
		return x + 1
	}
	return Registers
}

// store writes data to memory starting at I. The complete range is checked
// before anything is written.
func (c *CPU) store(data []byte) error {
	if int(c.i)+len(data) > memory.Size {
		return fmt.Errorf("%w: storing %d bytes at 0x%04X", memory.ErrOutOfBounds, len(data), c.i)
	}
	for n, b := range data {
		if err := c.mem.Set(c.i+uint16(n), b); err != nil {
			return err
		}
	}
	return nil
}
