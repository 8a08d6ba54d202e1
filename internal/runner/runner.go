// Package runner drives a CHIP-8 machine at a fixed clock rate and connects it
// to a display and a keypad.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Display renders frames of the machine.
type Display interface {
	// Render receives a packed RGB24 frame of chip8.DisplaySize bytes.
	Render(frame []byte) error
}

// Keypad reports the current state of the hexadecimal keypad.
type Keypad interface {
	Keys() [chip8.KeyCount]bool
}

// ToneSink is an optional interface of a Display that signals tone requests.
type ToneSink interface {
	Tone(on bool)
}

// Config controls the execution loop.
type Config struct {
	// ClockHz is the number of steps per second, 0 runs unpaced.
	ClockHz int
	// Steps stops the loop after the given number of steps, 0 runs until the
	// context is canceled.
	Steps int
}

// Stats contains counters of a run.
type Stats struct {
	Steps      int
	Frames     int
	WaitSteps  int
	ToneSteps  int
	Elapsed    time.Duration
	StopReason string
}

// Stop reasons reported in Stats.
const (
	StopCanceled  = "canceled"
	StopStepLimit = "step limit"
	StopFault     = "fault"
)

// Runner executes the machine loop.
type Runner struct {
	logger  *log.Logger
	machine *chip8.Machine
	display Display
	keypad  Keypad
	cfg     Config

	stats Stats
	tone  bool
	now   func() time.Time
}

// New returns a runner for the machine. The machine is not reset, the program
// needs to be loaded before calling Run.
func New(logger *log.Logger, machine *chip8.Machine, display Display, keypad Keypad, cfg Config) *Runner {
	return &Runner{
		logger:  logger,
		machine: machine,
		display: display,
		keypad:  keypad,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run executes steps until the context is canceled, the step limit is reached
// or the machine faults. A canceled context is returned as error.
func (r *Runner) Run(ctx context.Context) error {
	start := r.now()
	defer func() {
		r.stats.Elapsed = r.now().Sub(start)
	}()

	r.logger.Debug("Starting execution",
		log.Int("clock_hz", r.cfg.ClockHz),
		log.Int("step_limit", r.cfg.Steps),
	)

	// the initial frame shows a cleared display before the first draw
	if err := r.render(); err != nil {
		return err
	}

	if r.cfg.ClockHz == 0 {
		return r.runUnpaced(ctx)
	}
	return r.runPaced(ctx)
}

// Stats returns the counters of the last run.
func (r *Runner) Stats() Stats {
	return r.stats
}

func (r *Runner) runUnpaced(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return r.cancel(ctx)
		default:
		}

		done, err := r.step()
		if done || err != nil {
			return err
		}
	}
}

func (r *Runner) runPaced(ctx context.Context) error {
	interval := max(time.Second/time.Duration(r.cfg.ClockHz), time.Nanosecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.cancel(ctx)
		case <-ticker.C:
		}

		done, err := r.step()
		if done || err != nil {
			return err
		}
	}
}

// step executes a single machine step and returns whether the loop is done.
func (r *Runner) step() (bool, error) {
	if r.cfg.Steps > 0 && r.stats.Steps >= r.cfg.Steps {
		r.stats.StopReason = StopStepLimit
		return true, nil
	}

	if err := r.updateKeys(); err != nil {
		return true, err
	}

	address := r.machine.PC()
	res, err := r.machine.Step()
	if err != nil {
		r.stats.StopReason = StopFault
		r.logFault(address, err)
		return true, fmt.Errorf("running program: %w", err)
	}
	r.stats.Steps++

	if res.Waiting {
		r.stats.WaitSteps++
	}
	if res.Tone {
		r.stats.ToneSteps++
	}
	r.updateTone(res.Tone)

	if res.Redraw {
		if err := r.render(); err != nil {
			return true, err
		}
	}
	return false, nil
}

func (r *Runner) updateKeys() error {
	if r.keypad == nil {
		return nil
	}
	keys := r.keypad.Keys()
	for key, pressed := range keys {
		if err := r.machine.SetKey(key, pressed); err != nil {
			return fmt.Errorf("setting key state: %w", err)
		}
	}
	return nil
}

func (r *Runner) updateTone(on bool) {
	if on == r.tone {
		return
	}
	r.tone = on
	state := "off"
	if on {
		state = "on"
	}
	r.logger.Debug("Tone changed", log.String("state", state))

	if sink, ok := r.display.(ToneSink); ok {
		sink.Tone(on)
	}
}

func (r *Runner) render() error {
	if r.display == nil {
		return nil
	}
	if err := r.display.Render(r.machine.Frame()); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	r.stats.Frames++
	return nil
}

func (r *Runner) cancel(ctx context.Context) error {
	r.stats.StopReason = StopCanceled
	return ctx.Err()
}

func (r *Runner) logFault(address uint16, err error) {
	var opcode chip8.Opcode
	var decodeErr *chip8.DecodeError
	var stepErr *chip8.StepError
	switch {
	case errors.As(err, &decodeErr):
		opcode = decodeErr.Opcode
	case errors.As(err, &stepErr):
		opcode = stepErr.Opcode
	default:
		// the instruction could not be fetched
		r.logger.Error("Machine fault",
			log.Hex("pc", address),
			log.Int("steps", r.stats.Steps),
			log.Err(err),
		)
		return
	}

	r.logger.Error("Machine fault",
		log.Hex("pc", address),
		log.Hex("opcode", uint16(opcode)),
		log.Stringer("instruction", opcode),
		log.Int("steps", r.stats.Steps),
		log.Err(err),
	)
}
