// Package options contains the program options.
package options

import (
	"time"

	"github.com/retroenv/retrogolib/set"
)

// Quirk profile names.
const (
	ProfileCHIP8 = "chip8"
	ProfileSCHIP = "schip"
)

// Names of the command line flags that toggle a single quirk.
const (
	FlagShiftVx    = "shift-vx"
	FlagClip       = "clip"
	FlagLoadStoreX = "loadstore-x"
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	Headless bool `flag:"headless" usage:"run without terminal, frames are discarded"`
	Trace    bool `flag:"trace" usage:"log every executed instruction (-headless: requires -debug)"`
	Debug    bool `flag:"debug" usage:"enable debug logging"`
	Quiet    bool `flag:"q" usage:"quiet mode"`
}

// QuirkFlags contains the options selecting interpreter behavior that
// differs between CHIP-8 implementations.
type QuirkFlags struct {
	Profile    string `flag:"quirks" usage:"quirk profile: chip8, schip (default: auto-detect)"`
	ShiftVx    bool   `flag:"shift-vx" usage:"8xy6/8xyE shift Vx in place"`
	Clip       bool   `flag:"clip" usage:"clip sprites at the bottom edge"`
	LoadStoreX bool   `flag:"loadstore-x" usage:"Fx55/Fx65 transfer V0..Vx only"`

	Explicit set.Set[string] // names of the quirk flags given on the command line
}

// TimingFlags contains timing options.
type TimingFlags struct {
	Hold time.Duration `flag:"hold" usage:"time a key counts as held after a key press" default:"150ms"`
	Idle time.Duration `flag:"idle" usage:"pause between two instructions" default:"1ms"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	QuirkFlags
	TimingFlags
}
