// Package emulator handles the complete workflow of running a ROM file.
package emulator

import (
	"context"
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/rom"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// RunFile loads the ROM file into a new machine and runs it until it faults,
// the instruction budget is used up or the user quits.
func RunFile(ctx context.Context, logger *log.Logger, opts options.Program, runnerOpts options.Runner) error {
	data, err := rom.New(logger).Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	var machineOpts []chip8.Option
	if opts.Trace {
		machineOpts = append(machineOpts, chip8.WithLogger(logger))
	}
	machine := chip8.New(machineOpts...)
	if err := machine.LoadProgram(data); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	PrintInfo(logger, opts, len(data))

	if runnerOpts.Headless {
		r := runner.New(logger, machine, nil, runnerOpts)
		err := r.Run(ctx)
		PrintState(logger, machine, r.Executed())
		if err != nil {
			return fmt.Errorf("running emulation: %w", err)
		}
		return nil
	}

	return runTerminal(ctx, logger, machine, runnerOpts)
}

// runTerminal runs the machine with the terminal frontend, the gocui main loop
// runs in its own goroutine while the runner drives the machine.
func runTerminal(ctx context.Context, logger *log.Logger, machine *chip8.Machine, runnerOpts options.Runner) error {
	term, err := terminal.New()
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}

	termErr := make(chan error, 1)
	go func() {
		termErr <- term.Run()
	}()

	r := runner.New(logger, machine, term, runnerOpts)
	runErr := r.Run(ctx)

	term.Quit()
	loopErr := <-termErr
	term.Close()

	PrintState(logger, machine, r.Executed())
	if runErr != nil {
		return fmt.Errorf("running emulation: %w", runErr)
	}
	if loopErr != nil {
		return fmt.Errorf("running terminal: %w", loopErr)
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))
}

// PrintInfo prints information about the loaded ROM.
func PrintInfo(logger *log.Logger, opts options.Program, size int) {
	if opts.Quiet {
		return
	}

	logger.Info("Running CHIP-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", size),
		log.Hex("address", uint16(chip8.ProgramStart)),
	)
}

// PrintState logs the machine state after the emulation stopped.
func PrintState(logger *log.Logger, machine *chip8.Machine, executed uint64) {
	registers := machine.Registers()
	values := make([]string, len(registers))
	for i, value := range registers {
		values[i] = fmt.Sprintf("V%X=$%02X", i, value)
	}

	logger.Info("Emulation stopped",
		log.Int("instructions", int(executed)),
		log.Hex("pc", machine.PC()),
		log.Hex("i", machine.I()),
		log.Int("sp", int(machine.SP())),
		log.String("registers", strings.Join(values, " ")),
	)
}
