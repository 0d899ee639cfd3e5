// Package pipeline orchestrates the stages from loading a ROM to running it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete run of a program.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute loads the program given in the options and runs it until it halts,
// the user quits or the context gets cancelled.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) error {
	profile := p.detector.Detect(opts)
	quirks, err := config.Quirks(profile, opts.QuirkFlags)
	if err != nil {
		return fmt.Errorf("resolving quirks: %w", err)
	}

	mem, size, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	p.printInfo(opts, profile, quirks, size)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outlets := machine.NewOutlets()
	keys := keypad.NewState()
	c := cpu.New(mem, keys,
		cpu.WithQuirks(quirks),
		cpu.WithFrameSink(outlets.Frames))

	var (
		wg           sync.WaitGroup
		rendererDone <-chan struct{}
		rendererErr  error
	)
	if opts.Headless {
		startHeadless(ctx, &wg, p.logger, outlets)
	} else {
		term := terminal.New(p.logger, outlets, keys, terminal.WithHold(opts.Hold))
		rendererDone = term.Done()
		wg.Go(func() {
			rendererErr = term.Run(ctx)
		})
	}

	m := machine.New(p.logger, c, outlets.Log,
		machine.WithIdle(opts.Idle),
		machine.WithRendererDone(rendererDone),
		machine.WithTrace(opts.Trace),
		machine.WithTraceReport(!opts.Headless))
	m.Report(filepath.Base(opts.Input) + " loaded")

	runErr := m.Run(ctx)
	if runErr == nil && rendererDone != nil {
		// keep the final screen until the user quits
		select {
		case <-rendererDone:
		case <-ctx.Done():
			runErr = ctx.Err()
		}
	}

	cancel()
	wg.Wait()

	if rendererErr != nil {
		rendererErr = fmt.Errorf("running terminal: %w", rendererErr)
	}
	return errors.Join(runErr, rendererErr)
}

// printInfo prints information about the program being run.
func (p *Pipeline) printInfo(opts options.Program, profile string, quirks cpu.Quirks, size int) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Running CHIP-8 program",
		log.String("file", opts.Input),
		log.Int("size", size),
		log.String("quirks", profile),
	)
	p.logger.Debug("Interpreter quirks",
		log.String("shift", shiftSource(quirks)),
		log.String("clip", fmt.Sprint(quirks.ClipSprites)),
		log.String("loadstore", fmt.Sprint(quirks.LoadStoreX)),
	)
}

func shiftSource(quirks cpu.Quirks) string {
	if quirks.ShiftVx {
		return "Vx"
	}
	return "Vy"
}
