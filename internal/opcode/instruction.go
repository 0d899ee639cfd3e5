package opcode

// Kind identifies one decoded CHIP-8 instruction (sub)family.
type Kind uint8

// Instruction kinds, named after the operation they perform.
const (
	Unknown Kind = iota

	Halt        // 0000
	ClearScreen // 00E0
	Return      // 00EE
	Jump        // 1nnn
	Call        // 2nnn
	SkipEqNum   // 3xnn
	SkipNeNum   // 4xnn
	SkipEqReg   // 5xy0
	LoadNum     // 6xnn
	AddNum      // 7xnn
	LoadReg     // 8xy0
	Or          // 8xy1
	And         // 8xy2
	Xor         // 8xy3
	AddReg      // 8xy4
	Sub         // 8xy5
	ShiftRight  // 8xy6
	SubN        // 8xy7
	ShiftLeft   // 8xyE
	SkipNeReg   // 9xy0
	LoadIndex   // Annn
	JumpV0      // Bnnn
	Random      // Cxnn
	Draw        // Dxyn
	SkipKey     // Ex9E
	SkipNoKey   // ExA1
	LoadDelay   // Fx07
	WaitKey     // Fx0A
	SetDelay    // Fx15
	SetSound    // Fx18
	AddIndex    // Fx1E
	LoadGlyph   // Fx29
	StoreBCD    // Fx33
	StoreRegs   // Fx55
	LoadRegs    // Fx65

	kindCount
)

var kindNames = [kindCount]string{
	Unknown:     "unknown",
	Halt:        "halt",
	ClearScreen: "cls",
	Return:      "ret",
	Jump:        "jp",
	Call:        "call",
	SkipEqNum:   "se_num",
	SkipNeNum:   "sne_num",
	SkipEqReg:   "se_reg",
	LoadNum:     "ld_num",
	AddNum:      "add_num",
	LoadReg:     "ld_reg",
	Or:          "or",
	And:         "and",
	Xor:         "xor",
	AddReg:      "add_reg",
	Sub:         "sub",
	ShiftRight:  "shr",
	SubN:        "subn",
	ShiftLeft:   "shl",
	SkipNeReg:   "sne_reg",
	LoadIndex:   "ld_i",
	JumpV0:      "jp_v0",
	Random:      "rnd",
	Draw:        "drw",
	SkipKey:     "skp",
	SkipNoKey:   "sknp",
	LoadDelay:   "ld_vx_dt",
	WaitKey:     "ld_vx_k",
	SetDelay:    "ld_dt",
	SetSound:    "ld_st",
	AddIndex:    "add_i",
	LoadGlyph:   "ld_f",
	StoreBCD:    "ld_b",
	StoreRegs:   "ld_store",
	LoadRegs:    "ld_load",
}

func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// IsBranch returns whether the instruction sets the program counter itself
// instead of falling through to the next instruction.
func (k Kind) IsBranch() bool {
	switch k {
	case Return, Jump, Call, JumpV0:
		return true
	default:
		return false
	}
}

// Instruction is a decoded opcode. The operand accessors of the embedded
// Opcode are valid for every kind, their meaning depends on the kind.
type Instruction struct {
	Opcode
	Kind Kind
}

var family8 = [16]Kind{
	0x0: LoadReg,
	0x1: Or,
	0x2: And,
	0x3: Xor,
	0x4: AddReg,
	0x5: Sub,
	0x6: ShiftRight,
	0x7: SubN,
	0xE: ShiftLeft,
}

var familyF = map[uint8]Kind{
	0x07: LoadDelay,
	0x0A: WaitKey,
	0x15: SetDelay,
	0x18: SetSound,
	0x1E: AddIndex,
	0x29: LoadGlyph,
	0x33: StoreBCD,
	0x55: StoreRegs,
	0x65: LoadRegs,
}

// Decode returns the instruction encoded by the given word. Decoding never
// fails, words that match no instruction return the Unknown kind.
func Decode(op Opcode) Instruction {
	return Instruction{Opcode: op, Kind: decodeKind(op)}
}

func decodeKind(op Opcode) Kind {
	switch op.Mode() {
	case 0x0:
		switch op.Num() {
		case 0x00:
			return Halt
		case 0xE0:
			return ClearScreen
		case 0xEE:
			return Return
		}
	case 0x1:
		return Jump
	case 0x2:
		return Call
	case 0x3:
		return SkipEqNum
	case 0x4:
		return SkipNeNum
	case 0x5:
		if op.Z() == 0 {
			return SkipEqReg
		}
	case 0x6:
		return LoadNum
	case 0x7:
		return AddNum
	case 0x8:
		// unassigned slots of the table hold Unknown
		return family8[op.Z()]
	case 0x9:
		if op.Z() == 0 {
			return SkipNeReg
		}
	case 0xA:
		return LoadIndex
	case 0xB:
		return JumpV0
	case 0xC:
		return Random
	case 0xD:
		return Draw
	case 0xE:
		switch op.Num() {
		case 0x9E:
			return SkipKey
		case 0xA1:
			return SkipNoKey
		}
	case 0xF:
		if kind, ok := familyF[op.Num()]; ok {
			return kind
		}
	}
	return Unknown
}
