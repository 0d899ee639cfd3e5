// Package config handles application configuration and setup
package config

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// profiles contains the quirk defaults of every supported profile.
var profiles = map[string]cpu.Quirks{
	options.ProfileCHIP8: {},
	options.ProfileSCHIP: {
		ShiftVx:     true,
		ClipSprites: true,
		LoadStoreX:  true,
	},
}

// Profiles returns the names of all quirk profiles.
func Profiles() []string {
	return []string{options.ProfileCHIP8, options.ProfileSCHIP}
}

// Quirks returns the interpreter quirks for the given profile, overridden by
// the quirk flags that were explicitly passed.
func Quirks(profile string, flags options.QuirkFlags) (cpu.Quirks, error) {
	quirks, ok := profiles[profile]
	if !ok {
		return cpu.Quirks{}, fmt.Errorf("unsupported quirk profile '%s'. Valid options: %s",
			profile, strings.Join(Profiles(), ", "))
	}

	if flags.Explicit == nil {
		return quirks, nil
	}
	if flags.Explicit.Contains(options.FlagShiftVx) {
		quirks.ShiftVx = flags.ShiftVx
	}
	if flags.Explicit.Contains(options.FlagClip) {
		quirks.ClipSprites = flags.Clip
	}
	if flags.Explicit.Contains(options.FlagLoadStoreX) {
		quirks.LoadStoreX = flags.LoadStoreX
	}
	return quirks, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("retrochip8", log.String("version", versionString(version, commit, date)))
}

// versionString returns the version with a shortened commit and the build
// date, if it is known.
func versionString(version, commit, date string) string {
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if strings.Contains(date, "unknown") {
		date = ""
	}
	return buildinfo.Version(version, commit, date)
}
