// Package chip8 implements the CPU emulation core of the CHIP-8 virtual machine.
//
// # Machine Overview
//
// A Machine owns all emulated hardware state:
//   - 4KB of memory (0x000-0xFFF), the font table is kept at 0x000-0x04F
//   - 16 general-purpose 8-bit registers (V0-VF) and the 16-bit I register
//   - a 16 entry return address stack with its stack pointer
//   - a 64x32 monochrome screen buffer, stored row-major
//   - the state of the 16-key keypad
//   - the delay and sound timers
//
// Programs are loaded at ProgramStart (0x200), the address space below is reserved.
//
// # Execution
//
// The host drives the machine through two independent entry points:
//   - Step fetches one big-endian opcode, advances the program counter by 2
//     and executes the instruction
//   - TickTimers decrements the timers and is expected to be called at 60 Hz
//
// The machine performs no I/O and has no notion of wall-clock time, the host decides
// how many instructions are executed per frame.
//
// # Instruction Set
//
// Only the following subset of the CHIP-8 instruction set is supported:
//
//	0000  NOP
//	00E0  CLS
//	00EE  RET
//	1NNN  JP   addr
//	2NNN  CALL addr
//	3XNN  SE   Vx, byte
//	4XNN  SNE  Vx, byte
//	5XY0  SE   Vx, Vy
//	6XNN  LD   Vx, byte
//	7XNN  ADD  Vx, byte
//	8XY0  LD   Vx, Vy
//	8XY1  OR   Vx, Vy
//	8XY2  AND  Vx, Vy
//	8XY3  XOR  Vx, Vy
//
// # Faults
//
// Any other opcode results in an *UnhandledInstructionError. Reading outside of
// memory and overflowing or underflowing the stack result in a *BoundsError.
// Both are fatal: the machine halts and refuses to execute further instructions
// until it is reset.
//
// # Usage Example
//
//	m := chip8.New(chip8.WithLogger(logger))
//	if err := m.LoadProgram(data); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//
//	for {
//		if err := m.Step(); err != nil {
//			return fmt.Errorf("executing instruction: %w", err)
//		}
//	}
package chip8
