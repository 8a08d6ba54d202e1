// Package config handles application configuration and setup
package config

import (
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
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

// Quirks returns the interpreter quirks for the preset name.
func Quirks(name string) (chip8.Quirks, error) {
	switch name {
	case options.QuirksModern, "":
		return chip8.ModernQuirks, nil
	case options.QuirksReference:
		return chip8.ReferenceQuirks, nil
	default:
		return chip8.Quirks{}, fmt.Errorf("unsupported quirks preset '%s'", name)
	}
}

// EmulatorOptions maps the program options to machine options. A seed of 0 is
// replaced by one derived from the current time, the used seed is returned so
// that a run can be reproduced.
func EmulatorOptions(opts options.Emulation) ([]chip8.Option, uint64, error) {
	quirks, err := Quirks(opts.Quirks)
	if err != nil {
		return nil, 0, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return []chip8.Option{
		chip8.WithQuirks(quirks),
		chip8.WithRandom(chip8.NewRandom(seed)),
	}, seed, nil
}
