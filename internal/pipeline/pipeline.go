// Package pipeline orchestrates loading a program, creating the machine and
// running it with the selected user interface.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/host/terminal"
	"github.com/retroenv/retrochip8/internal/host/window"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete emulation workflow.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
	input  *os.File
	output io.Writer
}

// New creates a new emulation pipeline using the standard input and output
// of the process.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
		input:  os.Stdin,
		output: os.Stdout,
	}
}

// Execute loads the program file and runs it until the context is canceled,
// the step limit is reached or the machine faults.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) error {
	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	machine, seed, err := p.createMachine(opts, program)
	if err != nil {
		return err
	}

	app.PrintInfo(p.logger, opts, len(program), seed)

	cfg := runner.Config{
		ClockHz: opts.ClockHz,
		Steps:   opts.Steps,
	}

	switch opts.Host {
	case options.HostHeadless:
		return p.runHeadless(ctx, machine, cfg)
	case options.HostTerminal:
		return p.runTerminal(ctx, machine, cfg)
	case options.HostWindow:
		return p.runWindow(ctx, machine, cfg, opts.Scale)
	default:
		return fmt.Errorf("unsupported user interface '%s'", opts.Host)
	}
}

// createMachine creates the machine and loads the program into it.
func (p *Pipeline) createMachine(opts options.Program, program []byte) (*chip8.Machine, uint64, error) {
	machineOpts, seed, err := config.EmulatorOptions(opts.Emulation)
	if err != nil {
		return nil, 0, fmt.Errorf("creating machine options: %w", err)
	}

	machine := chip8.New(machineOpts...)
	if err := machine.LoadProgram(program); err != nil {
		return nil, 0, fmt.Errorf("loading program into memory: %w", err)
	}
	return machine, seed, nil
}

func (p *Pipeline) runHeadless(ctx context.Context, machine *chip8.Machine, cfg runner.Config) error {
	headless := runner.NewHeadless()
	r := runner.New(p.logger, machine, headless, headless, cfg)

	runErr := r.Run(ctx)
	p.logStats(r.Stats())

	if err := headless.WriteFrame(p.output); err != nil {
		return fmt.Errorf("printing final frame: %w", err)
	}
	return runErr
}

func (p *Pipeline) runTerminal(ctx context.Context, machine *chip8.Machine, cfg runner.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := terminal.New(p.input, p.output, cancel)
	if err := term.Start(); err != nil {
		return fmt.Errorf("starting terminal: %w", err)
	}

	r := runner.New(p.logger, machine, term, term, cfg)
	runErr := r.Run(ctx)

	if err := term.Close(); err != nil {
		p.logger.Error("Restoring terminal failed", log.Err(err))
	}
	p.logStats(r.Stats())
	return runErr
}

func (p *Pipeline) runWindow(ctx context.Context, machine *chip8.Machine, cfg runner.Config, scale int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	win := window.New(ctx, scale, cancel)
	r := runner.New(p.logger, machine, win, win, cfg)

	runErr := make(chan error, 1)
	go func() {
		// the window closes once the machine stops
		defer cancel()
		runErr <- r.Run(ctx)
	}()

	if err := win.Run(); err != nil {
		return fmt.Errorf("running window: %w", err)
	}

	err := <-runErr
	p.logStats(r.Stats())
	return err
}

func (p *Pipeline) logStats(stats runner.Stats) {
	p.logger.Debug("Execution stopped",
		log.String("reason", stats.StopReason),
		log.Int("steps", stats.Steps),
		log.Int("frames", stats.Frames),
		log.Int("wait_steps", stats.WaitSteps),
		log.Int("tone_steps", stats.ToneSteps),
		log.Stringer("elapsed", stats.Elapsed),
	)
}
