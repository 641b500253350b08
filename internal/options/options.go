// Package options contains the program options.
package options

// DefaultSpeed is the default number of instructions executed per second.
const DefaultSpeed = 700

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	Speed    int    `flag:"speed" usage:"instructions executed per second" default:"700"`
	Cycles   uint64 `flag:"cycles" usage:"stop after the given number of instructions (0: unlimited)"`
	Headless bool   `flag:"headless" usage:"run without terminal frontend"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction, implies debug"`
	Debug    bool   `flag:"debug" usage:"enable debug logging"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
}

// Runner defines options to control the emulation loop.
type Runner struct {
	Speed    int    // instructions per second
	Cycles   uint64 // instruction budget, 0 for unlimited
	Headless bool   // run without frame pacing
}

// NewRunner returns the runner options for the given program options.
func NewRunner(opts Program) Runner {
	speed := opts.Speed
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return Runner{
		Speed:    speed,
		Cycles:   opts.Cycles,
		Headless: opts.Headless,
	}
}
