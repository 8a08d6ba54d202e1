// Package options contains the program options.
package options

// Host names selectable with the -ui flag.
const (
	HostTerminal = "terminal"
	HostWindow   = "window"
	HostHeadless = "headless"
)

// Quirk preset names selectable with the -quirks flag.
const (
	QuirksModern    = "modern"
	QuirksReference = "reference"
)

// Default emulation settings.
const (
	DefaultClockHz = 500
	DefaultScale   = 10
)

// Parameters contains file path options.
type Parameters struct {
	Input string `arg:"positional" required:"true" usage:"CHIP-8 program file"`
}

// Flags contains behavior options.
type Flags struct {
	Host  string `flag:"ui" usage:"user interface: terminal, window, headless" default:"terminal"`
	Debug bool   `flag:"debug" usage:"enable debug logging"`
	Quiet bool   `flag:"q" usage:"quiet mode"`
}

// Emulation contains options that control the virtual machine.
type Emulation struct {
	ClockHz int    `flag:"hz" usage:"instructions per second, 0 runs unpaced" default:"500"`
	Seed    uint64 `flag:"seed" usage:"seed of the random number generator, 0 uses the current time"`
	Steps   int    `flag:"steps" usage:"stop after the given number of instructions, 0 runs until stopped"`
	Quirks  string `flag:"quirks" usage:"interpreter behavior: modern, reference" default:"modern"`
	Scale   int    `flag:"scale" usage:"window pixel scale" default:"10"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	Emulation
}
