// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	goio "io"
	"iter"
	"maps"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

// Emulator state. CPU + program listing + output tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Tape io.Tape // Tape output channel, receives PRN and PRA.
}

// NewEmulator creates a new emulator, with its output tape discarded
// until a writer is attached.
func NewEmulator(config cpu.Config) (emu *Emulator, err error) {
	core, err := cpu.NewCpu(config)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:     core,
		Program: &cpu.Program{},
	}

	emu.Tape.Output = goio.Discard
	emu.Cpu.Output = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(map[string]string{
		"STEP_LIMIT": fmt.Sprintf("%v", emu.Cpu.Config.Limit),
	}),
		emu.Cpu.Defines(),
	)
}

// Assemble parses assembly text into the emulator's program, with all of
// the emulator defines available as equates. The program is loaded on the
// next Reset.
func (emu *Emulator) Assemble(input goio.Reader, origin int) (err error) {
	asm := &cpu.Assembler{
		Verbose: emu.Verbose,
		Width:   emu.Cpu.Config.Width,
		Origin:  origin,
	}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset the CPU, load the program, and point the PC at its origin.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	err = emu.Cpu.Load(emu.Program.Binary(), emu.Program.Origin)
	if err != nil {
		return
	}

	emu.Cpu.Pc = emu.Program.Origin

	if emu.Verbose {
		log.WithFields(log.Fields{
			"origin": emu.Program.Origin,
			"lines":  len(emu.Program.Statements),
		}).Info("emulator: program loaded")
	}

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
// Once the CPU has halted, done is set and further ticks do nothing.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.State == cpu.STATE_HALTED {
		done = true
		return
	}

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Cpu.State == cpu.STATE_HALTED

	return
}

// Run the emulator until the program halts, faults, or ctx is done.
// A faulted CPU leaves the PC at the faulting instruction, so the error
// carries its source line.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.State == cpu.STATE_HALTED {
		return
	}

	err = emu.Cpu.RunContext(ctx)
	if err != nil {
		err = &ErrRuntime{LineNo: emu.LineNo(), Err: err}
	}

	return
}
