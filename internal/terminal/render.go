package terminal

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
)

// registersWidth is the minimum inner width of the registers view.
const registersWidth = 22

// Two screen rows are packed into one text line using half block glyphs.
const (
	glyphNone   = ' '
	glyphTop    = '▀'
	glyphBottom = '▄'
	glyphBoth   = '█'
)

// renderScreen converts the screen buffer to text lines.
func renderScreen(screen chip8.Screen) string {
	var sb strings.Builder
	sb.Grow((chip8.ScreenWidth*3 + 1) * chip8.ScreenHeight / 2)

	for y := 0; y < chip8.ScreenHeight; y += 2 {
		for x := range chip8.ScreenWidth {
			top := screen[y*chip8.ScreenWidth+x]
			bottom := screen[(y+1)*chip8.ScreenWidth+x]

			switch {
			case top && bottom:
				sb.WriteRune(glyphBoth)
			case top:
				sb.WriteRune(glyphTop)
			case bottom:
				sb.WriteRune(glyphBottom)
			default:
				sb.WriteRune(glyphNone)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatRegisters returns the register view content.
func formatRegisters(frame runner.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PC: $%04X  I: $%04X\n", frame.PC, frame.I)
	fmt.Fprintf(&sb, "SP: %-2d\n", frame.SP)
	fmt.Fprintf(&sb, "DT: $%02X    ST: $%02X\n", frame.DelayTimer, frame.SoundTimer)

	for i := 0; i < chip8.RegisterCount; i += 2 {
		fmt.Fprintf(&sb, "V%X: $%02X    V%X: $%02X\n", i, frame.Registers[i], i+1, frame.Registers[i+1])
	}
	return sb.String()
}

// formatStatus returns the status line content.
func formatStatus(frame runner.Frame, beep bool) string {
	status := fmt.Sprintf("$%04X: %-20s instructions: %d",
		frame.LastAddress, chip8.Disassemble(frame.LastOpcode), frame.Instructions)
	if beep {
		status += "  BEEP"
	}
	return status
}
