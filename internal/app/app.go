// Package app provides the main application helpers for the emulator.
package app

import (
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))
	if date != "" && !strings.Contains(date, "unknown") {
		logger.Debug("Build", log.String("date", date))
	}
}

// PrintInfo prints the information about the loaded program and the
// emulation settings.
func PrintInfo(logger *log.Logger, opts options.Program, programSize int, seed uint64) {
	if opts.Quiet {
		return
	}

	logger.Info("Running CHIP-8 program",
		log.String("file", opts.Input),
		log.Int("size", programSize),
		log.String("ui", opts.Host),
		log.String("quirks", opts.Quirks),
	)
	logger.Debug("Emulation settings",
		log.Int("clock_hz", opts.ClockHz),
		log.Int("step_limit", opts.Steps),
		log.Hex("seed", seed),
	)
	if opts.ClockHz == 0 {
		logger.Warn("Clock rate is 0, the program runs as fast as possible")
	}
}
