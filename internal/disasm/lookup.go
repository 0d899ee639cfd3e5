package disasm

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Lookup searches the retrogolib CHIP-8 opcode tables for a definition that
// matches the given instruction word. It is used to tell instructions of
// CHIP-8 extensions that this interpreter does not execute apart from
// invalid words.
func Lookup(word uint16) (*chip8.Instruction, bool) {
	firstNibble := (word & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&word == op.Info.Value && op.Instruction != nil {
			return op.Instruction, true
		}
	}
	return nil, false
}

// Describe returns a description of an instruction word that failed to
// decode.
func Describe(word uint16) string {
	if ins, ok := Lookup(word); ok {
		return "unsupported instruction " + ins.Name
	}
	return "invalid instruction"
}
