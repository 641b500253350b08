package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStep_OrScenario(t *testing.T) {
	m := newMachine(t,
		0x60, 0x05, // ld V0, $05
		0x61, 0x03, // ld V1, $03
		0x80, 0x11, // or V0, V1
	)

	for range 3 {
		assert.NoError(t, m.Step())
	}

	assert.Equal(t, byte(7), m.V(0))
	assert.Equal(t, byte(3), m.V(1))
	assert.Equal(t, uint16(0x206), m.PC())
}

func TestStep_CallReturnScenario(t *testing.T) {
	m := newMachine(t,
		0x22, 0x08, // call $208
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0xEE, // ret
	)

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x208), m.PC())
	entries := m.StackEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, uint16(0x202), entries[0])

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0), m.SP())
}

func TestFetch(t *testing.T) {
	m := newMachine(t, 0xAB, 0xCD)

	opcode, err := m.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), opcode)
	assert.Equal(t, uint16(0x202), m.PC())
}

func TestFetch_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		pc      uint16
		wantErr bool
	}{
		{"last full opcode", MemorySize - 2, false},
		{"second byte outside of memory", MemorySize - 1, true},
		{"first byte outside of memory", MemorySize, true},
		{"far outside of memory", 0xFFFF, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.pc = tt.pc

			_, err := m.Fetch()
			if !tt.wantErr {
				assert.NoError(t, err)
				assert.Equal(t, tt.pc+2, m.PC())
				return
			}

			assert.True(t, errors.Is(err, ErrMemoryBounds))
			var boundsErr *BoundsError
			assert.True(t, errors.As(err, &boundsErr))
			assert.Equal(t, int(tt.pc), boundsErr.Value)
			assert.Equal(t, tt.pc, m.PC())
			assert.True(t, m.Halted())
		})
	}
}

func TestExecute_Nop(t *testing.T) {
	m := newMachine(t, 0x00, 0x00)
	before := *m

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, before.v, m.v)
	assert.Equal(t, before.screen, m.screen)
	assert.Equal(t, before.sp, m.sp)
}

func TestExecute_Cls(t *testing.T) {
	m := newMachine(t, 0x00, 0xE0)
	for i := range m.screen {
		m.screen[i] = i%3 == 0
	}

	assert.NoError(t, m.Step())
	assert.Equal(t, Screen{}, m.Screen())
}

func TestExecute_Jump(t *testing.T) {
	m := newMachine(t, 0x1A, 0xBC)

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0xABC), m.PC())
	assert.Equal(t, uint8(0), m.SP())
}

func TestExecute_LoadImmediate(t *testing.T) {
	m := New()
	for x := range RegisterCount {
		for nn := range 256 {
			opcode := 0x6000 | uint16(x)<<8 | uint16(nn)
			assert.NoError(t, m.Execute(opcode))
			assert.Equal(t, byte(nn), m.V(x))
		}
	}
}

func TestExecute_AddImmediateWraps(t *testing.T) {
	values := []int{0, 1, 2, 0x7F, 0x80, 0xFE, 0xFF}

	for _, nn1 := range values {
		for _, nn2 := range values {
			m := New()
			m.v[0xF] = 0x55

			assert.NoError(t, m.Execute(0x7300|uint16(nn1)))
			assert.NoError(t, m.Execute(0x7300|uint16(nn2)))

			assert.Equal(t, byte((nn1+nn2)%256), m.V(3))
			assert.Equal(t, byte(0x55), m.V(0xF))
		}
	}
}

func TestExecute_RegisterOperations(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy byte
		want   byte
	}{
		{"copy", 0x8120, 0x12, 0xC5, 0xC5},
		{"or", 0x8121, 0x0F, 0xF0, 0xFF},
		{"or same bits", 0x8121, 0x05, 0x03, 0x07},
		{"and", 0x8122, 0x3C, 0x0F, 0x0C},
		{"xor", 0x8123, 0xFF, 0x0F, 0xF0},
		{"xor equal", 0x8123, 0xAA, 0xAA, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.v[1] = tt.vx
			m.v[2] = tt.vy

			assert.NoError(t, m.Execute(tt.opcode))
			assert.Equal(t, tt.want, m.V(1))
			assert.Equal(t, tt.vy, m.V(2))
			assert.Equal(t, byte(0), m.V(0xF))
		})
	}
}

func TestExecute_SameRegisterOperations(t *testing.T) {
	m := New()
	m.v[4] = 0x5A

	assert.NoError(t, m.Execute(0x8443))
	assert.Equal(t, byte(0), m.V(4))
}

func TestStep_Skips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy byte
		skip   bool
	}{
		{"se immediate equal", 0x3142, 0x42, 0, true},
		{"se immediate not equal", 0x3142, 0x41, 0, false},
		{"sne immediate equal", 0x4142, 0x42, 0, false},
		{"sne immediate not equal", 0x4142, 0x41, 0, true},
		{"se register equal", 0x5120, 0x99, 0x99, true},
		{"se register not equal", 0x5120, 0x99, 0x98, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, byte(tt.opcode>>8), byte(tt.opcode))
			m.v[1] = tt.vx
			m.v[2] = tt.vy

			assert.NoError(t, m.Step())

			want := uint16(ProgramStart + 2)
			if tt.skip {
				want += 2
			}
			assert.Equal(t, want, m.PC())
		})
	}
}

func TestStep_SkipSkipsExactlyOneInstruction(t *testing.T) {
	m := newMachine(t,
		0x30, 0x00, // se V0, $00
		0x61, 0x01, // ld V1, $01 (skipped)
		0x62, 0x02, // ld V2, $02
	)

	assert.NoError(t, m.Step())
	assert.NoError(t, m.Step())

	assert.Equal(t, byte(0), m.V(1))
	assert.Equal(t, byte(2), m.V(2))
	assert.Equal(t, uint16(0x206), m.PC())
}

func TestStep_NestedCalls(t *testing.T) {
	// every subroutine at $300+4n calls the next one, returns are placed behind the calls
	program := make([]byte, 0x200)
	program[0] = 0x23 // call $300
	program[1] = 0x00
	for n := range StackSize {
		offset := 0x100 + 4*n
		target := uint16(0x300 + 4*(n+1))
		program[offset] = byte(0x20 | target>>8)
		program[offset+1] = byte(target)
		program[offset+2] = 0x00 // ret
		program[offset+3] = 0xEE
	}
	m := newMachine(t, program...)

	// the first call plus 15 nested calls fill the stack
	for depth := range StackSize {
		before := m.PC()
		assert.NoError(t, m.Step())
		assert.Equal(t, uint8(depth+1), m.SP())
		entries := m.StackEntries()
		assert.Equal(t, before+2, entries[len(entries)-1])
	}

	// the 17th call overflows and leaves the stack untouched
	stack := m.stack
	pc := m.PC()
	err := m.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	var boundsErr *BoundsError
	assert.True(t, errors.As(err, &boundsErr))
	assert.Equal(t, "push", boundsErr.Op)
	assert.Equal(t, "push 0x10: stack overflow", err.Error())
	assert.Equal(t, uint8(StackSize), m.SP())
	assert.Equal(t, stack, m.stack)
	assert.Equal(t, pc+2, m.PC())
}

func TestStep_NestedReturns(t *testing.T) {
	m := New()
	for depth := range StackSize {
		assert.NoError(t, m.Execute(0x2000|uint16(0x300+2*depth)))
	}
	assert.Equal(t, uint8(StackSize), m.SP())

	// each return restores the program counter of its call
	for depth := StackSize - 1; depth >= 0; depth-- {
		assert.NoError(t, m.Execute(0x00EE))
		want := uint16(ProgramStart)
		if depth > 0 {
			want = uint16(0x300 + 2*(depth-1))
		}
		assert.Equal(t, want, m.PC())
	}
	assert.Equal(t, uint8(0), m.SP())
}

func TestStep_ReturnOnEmptyStack(t *testing.T) {
	m := newMachine(t, 0x00, 0xEE)

	err := m.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, "pop 0x0: stack underflow", err.Error())
	assert.Equal(t, uint8(0), m.SP())
	assert.True(t, m.Halted())
}

func TestExecute_UnhandledInstruction(t *testing.T) {
	opcodes := []uint16{
		0x0123, 0x00E1, 0x00FF,
		0x5121, 0x512F,
		0x8124, 0x8125, 0x8126, 0x8127, 0x812E,
		0x9120, 0xA123, 0xB123, 0xC123, 0xD123,
		0xE19E, 0xF10A, 0xFFFF,
	}

	for _, opcode := range opcodes {
		m := newMachine(t, byte(opcode>>8), byte(opcode))
		m.v[1] = 0x11
		registers := m.Registers()

		err := m.Step()
		assert.True(t, errors.Is(err, ErrUnhandledInstruction))

		var unhandled *UnhandledInstructionError
		assert.True(t, errors.As(err, &unhandled))
		assert.Equal(t, opcode, unhandled.Opcode)
		assert.Equal(t, uint16(ProgramStart), unhandled.Address)
		assert.Equal(t, registers, m.Registers())
		assert.True(t, m.Halted())
	}
}

func TestStep_HaltedMachine(t *testing.T) {
	m := newMachine(t,
		0xFF, 0xFF,
		0x60, 0x01, // ld V0, $01
	)

	err := m.Step()
	assert.ErrorContains(t, err, "$FFFF")

	err = m.Step()
	assert.True(t, errors.Is(err, ErrHalted))
	assert.True(t, errors.Is(err, ErrUnhandledInstruction))
	assert.Equal(t, byte(0), m.V(0))
	assert.Equal(t, uint16(0x202), m.PC())

	err = m.Execute(0x6001)
	assert.True(t, errors.Is(err, ErrHalted))
	assert.Equal(t, byte(0), m.V(0))

	m.Reset()
	assert.False(t, m.Halted())
	assert.NoError(t, m.Execute(0x6001))
	assert.Equal(t, byte(1), m.V(0))
}
