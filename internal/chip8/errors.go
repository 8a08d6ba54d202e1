package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is returned when the fetched word does not match any instruction.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrStackOverflow is returned when a call exceeds StackDepth nested levels.
	ErrStackOverflow = errors.New("call stack overflow")
	// ErrStackUnderflow is returned when a return is executed on an empty call stack.
	ErrStackUnderflow = errors.New("call stack underflow")
	// ErrAddressOutOfRange is returned for memory accesses past the end of memory.
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrProgramTooLarge is returned when a program does not fit into program memory.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrKeyIndex is returned for key indexes outside of the keypad.
	ErrKeyIndex = errors.New("invalid key index")
	// ErrPixelIndex is returned for pixel indexes outside of the framebuffer.
	ErrPixelIndex = errors.New("invalid pixel index")
	// ErrPixelState is returned when a pixel is set to a state other than 0 or 1.
	ErrPixelState = errors.New("invalid pixel state")
	// ErrPixelCorrupt signals a framebuffer pixel that is neither on nor off.
	// It can only be caused by a bug in the framebuffer code.
	ErrPixelCorrupt = errors.New("corrupt pixel encoding")
)

// DecodeError is returned by Step when the instruction at Address is not part of
// the instruction set.
type DecodeError struct {
	Address uint16
	Opcode  Opcode
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%04X at $%03X", uint16(e.Opcode), e.Address)
}

// Unwrap returns ErrUnknownOpcode.
func (e *DecodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// StepError is returned by Step when a known instruction faults while executing.
type StepError struct {
	Address uint16
	Opcode  Opcode
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("executing $%04X at $%03X: %s", uint16(e.Opcode), e.Address, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
