// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/set"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	opts.Explicit = explicitQuirkFlags(flags)

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
	fmt.Println("keys: 1234/qwer/asdf/zxcv map to the keypad 123C/456D/789E/A0BF, '.' or Esc quits")
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to run, please pass the file to run as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("Only one file can be run, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Profile = strings.ToLower(opts.Profile)
	if opts.Profile != "" && !slices.Contains(config.Profiles(), opts.Profile) {
		return fmt.Errorf("unsupported quirk profile: %s. Valid options: %s",
			opts.Profile, strings.Join(config.Profiles(), ", "))
	}

	if opts.Hold <= 0 {
		return fmt.Errorf("invalid key hold duration %s, it has to be positive", opts.Hold)
	}
	if opts.Idle < 0 {
		return fmt.Errorf("invalid idle duration %s, it can not be negative", opts.Idle)
	}
	return nil
}

// explicitQuirkFlags returns the names of the quirk flags that were passed
// on the command line, they override the quirk profile.
func explicitQuirkFlags(flags *flag.FlagSet) set.Set[string] {
	explicit := set.New[string]()
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case options.FlagShiftVx, options.FlagClip, options.FlagLoadStoreX:
			explicit.Add(f.Name)
		}
	})
	return explicit
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal output, frames are discarded and messages are logged")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, shown in the log pane or with -headless as debug log")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.StringVar(&opts.Profile, "quirks", "", "quirk profile (chip8/schip) - if not auto-detected from file extension")
	flags.BoolVar(&opts.ShiftVx, options.FlagShiftVx, false, "8xy6/8xyE shift Vx in place instead of shifting Vy into Vx")
	flags.BoolVar(&opts.Clip, options.FlagClip, false, "clip sprites at the bottom edge of the screen instead of failing")
	flags.BoolVar(&opts.LoadStoreX, options.FlagLoadStoreX, false, "Fx55/Fx65 transfer the registers V0..Vx instead of all registers")

	flags.DurationVar(&opts.Hold, "hold", terminal.DefaultHold, "time a key counts as held after it was pressed")
	flags.DurationVar(&opts.Idle, "idle", machine.DefaultIdle, "pause between the execution of two instructions")
}
