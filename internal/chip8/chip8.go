package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// CHIP-8 machine layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: Font table (80 bytes)
//	0x050-0x1FF: Reserved interpreter area
//	0x200-0xFFF: User program space (3584 bytes)
//
// The screen buffer and the stack are kept outside of the addressable memory.
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 4096

	// ProgramStart is the memory address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the maximum size of a program that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// OpcodeSize is the size of a CHIP-8 instruction in bytes.
	OpcodeSize = 2

	ScreenWidth  = 64
	ScreenHeight = 32

	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16
)

// Screen is the monochrome pixel buffer, row-major.
type Screen [ScreenWidth * ScreenHeight]bool

// Option configures a Machine.
type Option func(*Machine)

// WithLogger enables debug tracing of all executed instructions.
func WithLogger(logger *log.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// Machine contains the complete state of an emulated CHIP-8 system.
// It is not safe for concurrent use, the host serializes all calls.
type Machine struct {
	logger *log.Logger

	pc     uint16
	i      uint16
	sp     uint8
	v      [RegisterCount]byte
	stack  [StackSize]uint16
	memory [MemorySize]byte
	screen Screen
	keys   [KeyCount]bool

	delayTimer byte
	soundTimer byte

	fault error // latched fatal fault, cleared by Reset
}

// New returns a new machine in its power-on state.
func New(options ...Option) *Machine {
	m := &Machine{}
	for _, option := range options {
		option(m)
	}
	m.reset()
	return m
}

// Reset puts the machine back into its power-on state.
// All prior state including a latched fault is discarded.
func (m *Machine) Reset() {
	m.reset()
	if m.logger != nil {
		m.logger.Debug("Machine reset", log.Hex("pc", m.pc))
	}
}

func (m *Machine) reset() {
	logger := m.logger
	*m = Machine{
		logger: logger,
		pc:     ProgramStart,
	}
	copy(m.memory[:FontSize], font[:])
}

// LoadProgram resets the machine and copies the program into memory at ProgramStart.
func (m *Machine) LoadProgram(data []byte) error {
	if len(data) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(data), MaxProgramSize)
	}

	m.Reset()
	copy(m.memory[ProgramStart:], data)

	if m.logger != nil {
		m.logger.Debug("Program loaded",
			log.Hex("address", uint16(ProgramStart)),
			log.Int("size", len(data)))
	}
	return nil
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// I returns the index register.
func (m *Machine) I() uint16 {
	return m.i
}

// V returns the value of register Vx.
func (m *Machine) V(x int) byte {
	return m.v[x]
}

// Registers returns a copy of the V registers.
func (m *Machine) Registers() [RegisterCount]byte {
	return m.v
}

// SP returns the stack pointer, the index of the next free stack slot.
func (m *Machine) SP() uint8 {
	return m.sp
}

// StackEntries returns a copy of the used part of the stack, oldest entry first.
func (m *Machine) StackEntries() []uint16 {
	entries := make([]uint16, m.sp)
	copy(entries, m.stack[:m.sp])
	return entries
}

// DelayTimer returns the current value of the delay timer.
func (m *Machine) DelayTimer() byte {
	return m.delayTimer
}

// SetDelayTimer sets the delay timer.
func (m *Machine) SetDelayTimer(value byte) {
	m.delayTimer = value
}

// SoundTimer returns the current value of the sound timer.
func (m *Machine) SoundTimer() byte {
	return m.soundTimer
}

// SetSoundTimer sets the sound timer.
func (m *Machine) SetSoundTimer(value byte) {
	m.soundTimer = value
}

// Beeping returns whether the host should currently output a tone.
func (m *Machine) Beeping() bool {
	return m.soundTimer > 0
}

// Memory returns a copy of the complete memory.
func (m *Machine) Memory() [MemorySize]byte {
	return m.memory
}

// ReadMemory returns the byte at the given address.
func (m *Machine) ReadMemory(address uint16) (byte, error) {
	if int(address) >= MemorySize {
		return 0, &BoundsError{Op: "read", Value: int(address), Err: ErrMemoryBounds}
	}
	return m.memory[address], nil
}

// Screen returns a copy of the screen buffer.
func (m *Machine) Screen() Screen {
	return m.screen
}

// Pixel returns whether the pixel at the given coordinates is lit.
// Coordinates outside of the screen are reported as unlit.
func (m *Machine) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	return m.screen[y*ScreenWidth+x]
}

// SetKey sets the pressed state of a single keypad key.
func (m *Machine) SetKey(key uint8, pressed bool) error {
	if int(key) >= KeyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	m.keys[key] = pressed
	return nil
}

// SetKeys replaces the state of the whole keypad.
func (m *Machine) SetKeys(keys [KeyCount]bool) {
	m.keys = keys
}

// Key returns whether the given keypad key is pressed.
func (m *Machine) Key(key uint8) bool {
	if int(key) >= KeyCount {
		return false
	}
	return m.keys[key]
}

// Halted returns whether the machine stopped because of a fault.
func (m *Machine) Halted() bool {
	return m.fault != nil
}

// Fault returns the fault that halted the machine or nil.
func (m *Machine) Fault() error {
	return m.fault
}
