package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// nopName is the mnemonic used for the 0000 opcode, which the instruction table
// treats as a machine code routine call.
const nopName = "nop"

// Disassemble returns the assembly representation of the given opcode.
// Opcodes that are not part of the CHIP-8 instruction set are returned as data word.
func Disassemble(opcode uint16) string {
	if opcode == 0x0000 {
		return nopName
	}

	ins := lookupInstruction(opcode)
	if ins == nil {
		return fmt.Sprintf(".word $%04X", opcode)
	}

	if params := formatInstruction(ins.Name, opcode); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

// lookupInstruction returns the instruction matching the opcode in the
// CHIP-8 opcode table or nil.
func lookupInstruction(opcode uint16) *chip8cpu.Instruction {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8cpu.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

// formatInstruction formats the parameters of a CHIP-8 instruction.
func formatInstruction(name string, opcode uint16) string {
	switch name {
	case chip8cpu.ClsName, chip8cpu.RetName:
		return ""
	case chip8cpu.JpName:
		return formatJumpInstruction(opcode)
	case chip8cpu.CallName:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case chip8cpu.SeName, chip8cpu.SneName:
		return formatCompareInstruction(opcode)
	case chip8cpu.LdName:
		return formatLoadInstruction(opcode)
	case chip8cpu.AddName:
		return formatAddInstruction(opcode)
	case chip8cpu.OrName, chip8cpu.AndName, chip8cpu.XorName, chip8cpu.SubName, chip8cpu.SubnName:
		return fmt.Sprintf("V%X, V%X", registerX(opcode), registerY(opcode))
	case chip8cpu.ShrName, chip8cpu.ShlName, chip8cpu.SkpName, chip8cpu.SknpName:
		return fmt.Sprintf("V%X", registerX(opcode))
	case chip8cpu.RndName:
		return fmt.Sprintf("V%X, $%02X", registerX(opcode), opcode&0x00FF)
	case chip8cpu.DrwName:
		return fmt.Sprintf("V%X, V%X, $%X", registerX(opcode), registerY(opcode), opcode&0x000F)
	}
	return ""
}

func formatJumpInstruction(opcode uint16) string {
	switch opcode & 0xF000 {
	case 0x1000:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
	}
	return ""
}

// formatCompareInstruction formats SE and SNE in their immediate and register forms.
func formatCompareInstruction(opcode uint16) string {
	x := registerX(opcode)
	switch opcode & 0xF000 {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, registerY(opcode))
	}
	return ""
}

// formatLoadInstruction formats the LD variants.
func formatLoadInstruction(opcode uint16) string {
	x := registerX(opcode)
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(opcode))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	case 0xF000:
		return formatLoadSpecialInstruction(opcode)
	}
	return ""
}

// formatLoadSpecialInstruction formats the FXNN load variants.
func formatLoadSpecialInstruction(opcode uint16) string {
	x := registerX(opcode)
	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

func formatAddInstruction(opcode uint16) string {
	x := registerX(opcode)
	switch {
	case opcode&0xF000 == 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case opcode&0xF000 == 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(opcode))
	case opcode&0xF0FF == 0xF01E:
		return fmt.Sprintf("I, V%X", x)
	}
	return ""
}

// registerX extracts the X register nibble from a CHIP-8 opcode.
func registerX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// registerY extracts the Y register nibble from a CHIP-8 opcode.
func registerY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}
