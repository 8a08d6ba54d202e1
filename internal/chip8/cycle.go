package chip8

import (
	"errors"
	"fmt"
)

// StepResult describes the effects of a single step that a host may act on.
type StepResult struct {
	// Opcode is the executed instruction word.
	Opcode Opcode
	// Waiting is set while the machine waits for a key press (Fx0A).
	Waiting bool
	// Tone is set if the sound timer was running during this step.
	Tone bool
	// Redraw is set if the framebuffer was modified.
	Redraw bool
}

// Step executes exactly one fetch, execute, advance and timer tick cycle.
// A fault is returned before the program counter advances or timers tick,
// unknown instructions are reported as *DecodeError and all other execution
// faults as *StepError.
func (m *Machine) Step() (StepResult, error) {
	address := m.pc
	op, err := m.fetch()
	if err != nil {
		return StepResult{}, err
	}

	res := StepResult{Opcode: op}
	if err := m.execute(op, &res); err != nil {
		if errors.Is(err, ErrUnknownOpcode) {
			return StepResult{Opcode: op}, &DecodeError{Address: address, Opcode: op}
		}
		return StepResult{Opcode: op}, &StepError{Address: address, Opcode: op, Err: err}
	}

	m.pc += opcodeSize
	res.Tone = m.tickTimers()
	return res, nil
}

// fetch reads the instruction word at the program counter.
func (m *Machine) fetch() (Opcode, error) {
	if int(m.pc)+opcodeSize > MemorySize {
		return 0, fmt.Errorf("%w: fetching instruction at $%04X", ErrAddressOutOfRange, m.pc)
	}
	return newOpcode(m.memory[m.pc], m.memory[m.pc+1]), nil
}

// tickTimers decrements both timers and returns whether the sound timer was
// running.
func (m *Machine) tickTimers() bool {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
		return true
	}
	return false
}
