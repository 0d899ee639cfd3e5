// Package detector handles quirk profile detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Detector handles quirk profile detection from file extensions and options.
type Detector struct {
	logger         *log.Logger
	schipExtension set.Set[string]
}

// New creates a new profile detector.
func New(logger *log.Logger) *Detector {
	schip := set.New[string]()
	schip.Add(".sc8")
	schip.Add(".schip")

	return &Detector{
		logger:         logger,
		schipExtension: schip,
	}
}

// Detect determines the quirk profile from options or file auto-detection.
// It first checks if a profile is explicitly specified in options, otherwise
// derives the profile from the input filename extension.
func (d *Detector) Detect(opts options.Program) string {
	if opts.Profile != "" {
		return opts.Profile
	}

	profile := d.detectFromFile(opts.Input)
	d.logger.Debug("Auto-detected quirk profile",
		log.String("profile", profile),
		log.String("file", opts.Input))
	return profile
}

// detectFromFile determines the quirk profile based on file extension.
func (d *Detector) detectFromFile(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if d.schipExtension.Contains(ext) {
		return options.ProfileSCHIP
	}
	// .ch8, .rom and unknown extensions run with classic CHIP-8 behavior
	return options.ProfileCHIP8
}
