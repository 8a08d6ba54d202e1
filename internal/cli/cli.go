// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	retrocli "github.com/retroenv/retrogolib/cli"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args)
}

func parseArgs(osArgs []string) (options.Program, error) {
	var opts options.Program
	flags := retrocli.NewFlagSet("retrochip8")
	flags.AddSection("Emulation", &opts.Emulation)
	flags.AddSection("Flags", &opts.Flags)
	flags.AddPositional(&opts.Parameters)

	remaining, err := flags.Parse(osArgs[1:])
	if err != nil {
		usageErr := &UsageError{flags: flags}
		if !errors.Is(err, retrocli.ErrHelpRequested) {
			usageErr.msg = err.Error()
		}
		return opts, usageErr
	}

	if err := validateArgs(remaining); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *retrocli.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and all flag defaults.
func (e *UsageError) ShowUsage() {
	if e.flags != nil {
		e.flags.ShowUsage()
		return
	}
	fmt.Printf("usage: retrochip8 [options] <program file>\n\n")
}

// validateArgs checks the arguments following the program file.
func validateArgs(args []string) error {
	for _, arg := range args {
		if arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 0 {
		return &UsageError{
			msg: fmt.Sprintf("only one program file can be run, got %d", len(args)+1),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Host = strings.ToLower(opts.Host)
	validHosts := []string{options.HostTerminal, options.HostWindow, options.HostHeadless}
	if !slices.Contains(validHosts, opts.Host) {
		return fmt.Errorf("unsupported user interface: %s. Valid options: %s",
			opts.Host, strings.Join(validHosts, ", "))
	}

	opts.Quirks = strings.ToLower(opts.Quirks)
	validQuirks := []string{options.QuirksModern, options.QuirksReference}
	if !slices.Contains(validQuirks, opts.Quirks) {
		return fmt.Errorf("unsupported quirks preset: %s. Valid options: %s",
			opts.Quirks, strings.Join(validQuirks, ", "))
	}

	switch {
	case opts.ClockHz < 0:
		return fmt.Errorf("invalid clock rate %d, must not be negative", opts.ClockHz)
	case opts.Steps < 0:
		return fmt.Errorf("invalid step limit %d, must not be negative", opts.Steps)
	case opts.Scale < 1:
		return fmt.Errorf("invalid window scale %d, must be at least 1", opts.Scale)
	}

	// an unpaced headless run can not be stopped by the user
	if opts.Host == options.HostHeadless && opts.Steps == 0 && opts.ClockHz == 0 {
		return fmt.Errorf("headless mode without clock rate needs a step limit")
	}
	return nil
}
