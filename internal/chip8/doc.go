// Package chip8 implements a CHIP-8 virtual machine.
//
// # Machine Overview
//
// CHIP-8 is an interpreted programming language from the 1970s designed for simple games.
// The virtual machine modelled here has:
//   - 4KB of memory (0x000-MaxAddress)
//   - 16 general-purpose 8-bit registers (V0-VF), VF doubles as flag register
//   - a 12-bit address register I and a program counter
//   - a call stack of StackDepth return addresses
//   - delay and sound timers that count down once per step
//   - a 16 key hexadecimal keypad
//   - a DisplayWidth x DisplayHeight monochrome framebuffer
//
// # Memory Layout
//
//   - 0x000-0x04F: built-in hexadecimal glyph table (16 glyphs, 5 bytes each)
//   - 0x050-0x1FF: unused interpreter area
//   - ProgramStart-MaxAddress: program image
//
// # Execution
//
// The host drives the machine one Step at a time. A step fetches the big-endian
// instruction word at the program counter, executes it, advances the program counter
// by 2 and ticks both timers. Control flow instructions store their target minus 2 so
// the unconditional advance lands on the target.
//
// Wall-clock pacing, input polling and rendering are left to the host:
//
//	m := chip8.New(chip8.WithRandom(chip8.NewRandom(1)))
//	if err := m.LoadProgram(rom); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	for {
//		res, err := m.Step()
//		if err != nil {
//			return err
//		}
//		if res.Redraw {
//			render(m.Frame())
//		}
//	}
//
// # Faults
//
// Unknown instructions, stack overflow or underflow and memory accesses past the end
// of memory stop the step before any state is modified and are returned as errors.
package chip8
