package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Step executes a single instruction: the opcode at the program counter is
// fetched, the program counter is advanced by 2 and the instruction is executed.
func (m *Machine) Step() error {
	address := m.pc
	opcode, err := m.Fetch()
	if err != nil {
		return err
	}
	return m.execute(address, opcode)
}

// Fetch reads the big-endian opcode at the program counter and advances
// the program counter by 2.
func (m *Machine) Fetch() (uint16, error) {
	if err := m.checkHalted(); err != nil {
		return 0, err
	}

	address := int(m.pc)
	if address+1 >= MemorySize {
		return 0, m.halt(&BoundsError{Op: "fetch", Value: address, Err: ErrMemoryBounds})
	}

	opcode := uint16(m.memory[address])<<8 | uint16(m.memory[address+1])
	m.pc += OpcodeSize
	return opcode, nil
}

// Execute decodes and executes the given opcode without fetching it from memory.
// The program counter is not advanced before execution.
func (m *Machine) Execute(opcode uint16) error {
	return m.execute(m.pc, opcode)
}

// execute dispatches the opcode by its nibbles. Literal sub opcodes are matched
// inside their family so that they take precedence over the family pattern.
func (m *Machine) execute(address, opcode uint16) error {
	if err := m.checkHalted(); err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Debug("Executing instruction",
			log.Hex("address", address),
			log.Hex("opcode", opcode),
			log.String("instruction", Disassemble(opcode)))
	}

	x := int(opcode&0x0F00) >> 8
	y := int(opcode&0x00F0) >> 4
	n := opcode & 0x000F
	nn := byte(opcode & 0x00FF)
	nnn := opcode & 0x0FFF

	var err error
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x0000:
			return nil
		case 0x00E0:
			m.cls()
			return nil
		case 0x00EE:
			err = m.ret()
		default:
			return m.unhandled(address, opcode)
		}

	case 0x1000:
		m.jp(nnn)
		return nil

	case 0x2000:
		err = m.call(nnn)

	case 0x3000:
		m.skipIf(m.v[x] == nn)
		return nil

	case 0x4000:
		m.skipIf(m.v[x] != nn)
		return nil

	case 0x5000:
		if n != 0 {
			return m.unhandled(address, opcode)
		}
		m.skipIf(m.v[x] == m.v[y])
		return nil

	case 0x6000:
		m.v[x] = nn
		return nil

	case 0x7000:
		m.v[x] += nn // wraps around, VF is not affected
		return nil

	case 0x8000:
		return m.executeLogical(address, opcode, x, y)

	default:
		return m.unhandled(address, opcode)
	}

	if err != nil {
		return m.halt(err)
	}
	return nil
}

// executeLogical handles the 8XYN family.
func (m *Machine) executeLogical(address, opcode uint16, x, y int) error {
	switch opcode & 0x000F {
	case 0x0:
		m.v[x] = m.v[y]
	case 0x1:
		m.v[x] |= m.v[y]
	case 0x2:
		m.v[x] &= m.v[y]
	case 0x3:
		m.v[x] ^= m.v[y]
	default:
		return m.unhandled(address, opcode)
	}
	return nil
}

// cls clears the screen.
func (m *Machine) cls() {
	m.screen = Screen{}
}

// ret returns from a subroutine.
func (m *Machine) ret() error {
	address, err := m.pop()
	if err != nil {
		return err
	}
	m.pc = address
	return nil
}

// jp jumps to the given address.
func (m *Machine) jp(address uint16) {
	m.pc = address
}

// call pushes the address of the next instruction and jumps to the subroutine.
func (m *Machine) call(address uint16) error {
	if err := m.push(m.pc); err != nil {
		return err
	}
	m.pc = address
	return nil
}

// skipIf skips the next instruction if the condition is met.
func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += OpcodeSize
	}
}

// push stores a return address on the stack. The stack is left untouched on failure.
func (m *Machine) push(address uint16) error {
	if int(m.sp) >= StackSize {
		return &BoundsError{Op: "push", Value: int(m.sp), Err: ErrStackOverflow}
	}
	m.stack[m.sp] = address
	m.sp++
	return nil
}

// pop removes the most recently pushed return address from the stack.
func (m *Machine) pop() (uint16, error) {
	if m.sp == 0 {
		return 0, &BoundsError{Op: "pop", Value: int(m.sp), Err: ErrStackUnderflow}
	}
	m.sp--
	return m.stack[m.sp], nil
}

func (m *Machine) unhandled(address, opcode uint16) error {
	return m.halt(&UnhandledInstructionError{Address: address, Opcode: opcode})
}

// halt latches the fault, all further execution is refused until the machine is reset.
func (m *Machine) halt(err error) error {
	m.fault = err
	if m.logger != nil {
		m.logger.Debug("Machine halted", log.Err(err))
	}
	return err
}

func (m *Machine) checkHalted() error {
	if m.fault == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrHalted, m.fault)
}
