// Package runner implements the host loop that drives the CHIP-8 machine.
// Instructions are executed at the configured speed while the timers are
// decremented at a fixed 60 Hz, both cadences are derived from one frame clock.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// frameDuration is the wall-clock time of one frame, one timer tick happens per frame.
const frameDuration = time.Second / chip8.TimerFrequency

// Frame is a snapshot of the machine state passed to the frontend after every frame.
type Frame struct {
	Screen     chip8.Screen
	Registers  [chip8.RegisterCount]byte
	PC         uint16
	I          uint16
	SP         uint8
	DelayTimer byte
	SoundTimer byte

	LastAddress  uint16 // address of the last executed instruction
	LastOpcode   uint16
	Instructions uint64 // total executed instructions
}

// Frontend renders frames and provides the keypad state.
type Frontend interface {
	// Render displays the frame.
	Render(frame Frame) error
	// Keys returns the current keypad state.
	Keys() [chip8.KeyCount]bool
	// Beep signals the expiry of the sound timer.
	Beep()
	// Done is closed when the user requests to quit.
	Done() <-chan struct{}
}

// Runner executes a machine at a configured speed.
type Runner struct {
	logger   *log.Logger
	machine  *chip8.Machine
	frontend Frontend
	opts     options.Runner

	executed    uint64
	carry       int // instruction share carried over between frames
	lastAddress uint16
}

// New returns a new runner. A nil frontend runs the machine without output.
func New(logger *log.Logger, machine *chip8.Machine, frontend Frontend, opts options.Runner) *Runner {
	if frontend == nil {
		frontend = nopFrontend{}
	}
	if opts.Speed <= 0 {
		opts.Speed = options.DefaultSpeed
	}
	return &Runner{
		logger:   logger,
		machine:  machine,
		frontend: frontend,
		opts:     opts,
	}
}

// Executed returns the number of executed instructions.
func (r *Runner) Executed() uint64 {
	return r.executed
}

// Run executes frames until the instruction budget is used up, the frontend
// is closed, the context is canceled or the machine faults.
func (r *Runner) Run(ctx context.Context) error {
	mode := "frontend"
	if r.opts.Headless {
		mode = "headless"
	}
	r.logger.Info("Starting emulation",
		log.Int("speed", r.opts.Speed),
		log.String("mode", mode))

	var tick <-chan time.Time
	if !r.opts.Headless {
		ticker := time.NewTicker(frameDuration)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := r.frame(); err != nil {
			return err
		}
		if r.budgetReached() {
			r.logger.Info("Instruction budget reached", log.Int("instructions", int(r.executed)))
			return nil
		}

		if r.opts.Headless {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.frontend.Done():
				return nil
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.frontend.Done():
			return nil
		case <-tick:
		}
	}
}

// frame executes the instructions of one frame, ticks the timers once and
// renders the result.
func (r *Runner) frame() error {
	r.machine.SetKeys(r.frontend.Keys())

	for range r.stepsPerFrame() {
		if r.budgetReached() {
			break
		}

		address := r.machine.PC()
		if err := r.machine.Step(); err != nil {
			return fmt.Errorf("executing instruction at $%04X: %w", address, err)
		}
		r.lastAddress = address
		r.executed++
	}

	if r.machine.TickTimers() {
		r.frontend.Beep()
	}

	if err := r.frontend.Render(r.snapshot()); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	return nil
}

// stepsPerFrame returns the number of instructions to execute in the next frame.
// The remainder of speed/60 is carried over so that every second executes
// exactly speed instructions.
func (r *Runner) stepsPerFrame() int {
	r.carry += r.opts.Speed
	steps := r.carry / chip8.TimerFrequency
	r.carry -= steps * chip8.TimerFrequency
	return steps
}

func (r *Runner) budgetReached() bool {
	return r.opts.Cycles > 0 && r.executed >= r.opts.Cycles
}

func (r *Runner) snapshot() Frame {
	return Frame{
		Screen:       r.machine.Screen(),
		Registers:    r.machine.Registers(),
		PC:           r.machine.PC(),
		I:            r.machine.I(),
		SP:           r.machine.SP(),
		DelayTimer:   r.machine.DelayTimer(),
		SoundTimer:   r.machine.SoundTimer(),
		LastAddress:  r.lastAddress,
		LastOpcode:   r.opcodeAt(r.lastAddress),
		Instructions: r.executed,
	}
}

// opcodeAt returns the opcode stored at the address or 0 if it is outside of memory.
func (r *Runner) opcodeAt(address uint16) uint16 {
	high, err := r.machine.ReadMemory(address)
	if err != nil {
		return 0
	}
	low, err := r.machine.ReadMemory(address + 1)
	if err != nil {
		return 0
	}
	return uint16(high)<<8 | uint16(low)
}

// nopFrontend discards all output and reports no pressed keys.
type nopFrontend struct{}

func (nopFrontend) Render(Frame) error { return nil }

func (nopFrontend) Keys() [chip8.KeyCount]bool { return [chip8.KeyCount]bool{} }

func (nopFrontend) Beep() {}

func (nopFrontend) Done() <-chan struct{} { return nil }
