package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrUnhandledInstruction is returned for opcodes outside of the supported instruction subset.
	ErrUnhandledInstruction = errors.New("unhandled instruction")
	// ErrMemoryBounds is returned when an access falls outside of the machine memory.
	ErrMemoryBounds = errors.New("memory access out of bounds")
	// ErrStackOverflow is returned when a call is made with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when a return is made with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrHalted is returned when the machine is used after a fault without being reset.
	ErrHalted = errors.New("machine halted")
	// ErrProgramTooLarge is returned when a program does not fit into the program memory.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrInvalidKey is returned for key indexes outside of the keypad.
	ErrInvalidKey = errors.New("invalid key")
)

// UnhandledInstructionError describes an opcode that the machine can not execute.
type UnhandledInstructionError struct {
	Address uint16 // address the opcode was fetched from
	Opcode  uint16
}

func (e *UnhandledInstructionError) Error() string {
	return fmt.Sprintf("%s $%04X (%s) at $%04X", ErrUnhandledInstruction, e.Opcode, Disassemble(e.Opcode), e.Address)
}

// Unwrap returns ErrUnhandledInstruction.
func (e *UnhandledInstructionError) Unwrap() error {
	return ErrUnhandledInstruction
}

// BoundsError describes a memory or stack access outside of its backing storage.
type BoundsError struct {
	Op    string // operation that failed, for example "fetch" or "push"
	Value int    // offending address or stack pointer
	Err   error
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s %#x: %s", e.Op, e.Value, e.Err)
}

func (e *BoundsError) Unwrap() error {
	return e.Err
}
