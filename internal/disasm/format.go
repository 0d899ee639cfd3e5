// Package disasm renders CHIP-8 instructions as assembly text for trace and
// diagnostic output. Mnemonics are taken from the retrogolib CHIP-8
// instruction definitions.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// haltName is the mnemonic of the 0000 instruction that has no retrogolib
// definition.
const haltName = "halt"

var mnemonics = map[opcode.Kind]*chip8.Instruction{
	opcode.ClearScreen: chip8.ClsInst,
	opcode.Return:      chip8.RetInst,
	opcode.Jump:        chip8.JpInst,
	opcode.JumpV0:      chip8.JpInst,
	opcode.Call:        chip8.CallInst,
	opcode.SkipEqNum:   chip8.SeInst,
	opcode.SkipEqReg:   chip8.SeInst,
	opcode.SkipNeNum:   chip8.SneInst,
	opcode.SkipNeReg:   chip8.SneInst,
	opcode.LoadNum:     chip8.LdInst,
	opcode.LoadReg:     chip8.LdInst,
	opcode.LoadIndex:   chip8.LdInst,
	opcode.LoadDelay:   chip8.LdInst,
	opcode.WaitKey:     chip8.LdInst,
	opcode.SetDelay:    chip8.LdInst,
	opcode.SetSound:    chip8.LdInst,
	opcode.LoadGlyph:   chip8.LdInst,
	opcode.StoreBCD:    chip8.LdInst,
	opcode.StoreRegs:   chip8.LdInst,
	opcode.LoadRegs:    chip8.LdInst,
	opcode.AddNum:      chip8.AddInst,
	opcode.AddReg:      chip8.AddInst,
	opcode.AddIndex:    chip8.AddInst,
	opcode.Or:          chip8.OrInst,
	opcode.And:         chip8.AndInst,
	opcode.Xor:         chip8.XorInst,
	opcode.Sub:         chip8.SubInst,
	opcode.SubN:        chip8.SubnInst,
	opcode.ShiftRight:  chip8.ShrInst,
	opcode.ShiftLeft:   chip8.ShlInst,
	opcode.Random:      chip8.RndInst,
	opcode.Draw:        chip8.DrwInst,
	opcode.SkipKey:     chip8.SkpInst,
	opcode.SkipNoKey:   chip8.SknpInst,
}

// Name returns the mnemonic of the instruction, or an empty string for
// unknown instructions.
func Name(ins opcode.Instruction) string {
	if ins.Kind == opcode.Halt {
		return haltName
	}
	if def, ok := mnemonics[ins.Kind]; ok {
		return def.Name
	}
	return ""
}

// Format returns the instruction as assembly text. Unknown instructions are
// rendered as a data word.
func Format(ins opcode.Instruction) string {
	name := Name(ins)
	if name == "" {
		return fmt.Sprintf(".word $%04X", uint16(ins.Opcode))
	}
	if params := formatParams(ins); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

func formatParams(ins opcode.Instruction) string {
	x, y := ins.X(), ins.Y()

	switch ins.Kind {
	case opcode.Jump, opcode.Call:
		return fmt.Sprintf("$%03X", ins.Addr())
	case opcode.JumpV0:
		return fmt.Sprintf("V0, $%03X", ins.Addr())
	case opcode.LoadIndex:
		return fmt.Sprintf("I, $%03X", ins.Addr())

	case opcode.SkipEqNum, opcode.SkipNeNum, opcode.LoadNum, opcode.AddNum, opcode.Random:
		return fmt.Sprintf("V%X, $%02X", x, ins.Num())

	case opcode.SkipEqReg, opcode.SkipNeReg, opcode.LoadReg, opcode.AddReg,
		opcode.Or, opcode.And, opcode.Xor, opcode.Sub, opcode.SubN,
		opcode.ShiftRight, opcode.ShiftLeft:
		return fmt.Sprintf("V%X, V%X", x, y)

	case opcode.SkipKey, opcode.SkipNoKey:
		return fmt.Sprintf("V%X", x)

	case opcode.Draw:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, ins.Z())

	case opcode.LoadDelay:
		return fmt.Sprintf("V%X, DT", x)
	case opcode.WaitKey:
		return fmt.Sprintf("V%X, K", x)
	case opcode.SetDelay:
		return fmt.Sprintf("DT, V%X", x)
	case opcode.SetSound:
		return fmt.Sprintf("ST, V%X", x)
	case opcode.AddIndex:
		return fmt.Sprintf("I, V%X", x)
	case opcode.LoadGlyph:
		return fmt.Sprintf("F, V%X", x)
	case opcode.StoreBCD:
		return fmt.Sprintf("B, V%X", x)
	case opcode.StoreRegs:
		return fmt.Sprintf("[I], V%X", x)
	case opcode.LoadRegs:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}
