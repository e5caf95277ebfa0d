package cpu

import (
	"context"
	"fmt"
	"iter"
	"maps"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/ls8/io"
	"github.com/ezrec/ls8/memory"
	"github.com/ezrec/ls8/word"
)

//go:generate go tool stringer -linecomment -type=State

// State is the execution state of the CPU.
type State int

const (
	STATE_READY   = State(0) // ready
	STATE_RUNNING = State(1) // running
	STATE_HALTED  = State(2) // halted
	STATE_FAULTED = State(3) // faulted
)

// Terminal returns true for the halted and faulted states.
func (st State) Terminal() bool {
	return st == STATE_HALTED || st == STATE_FAULTED
}

// Cpu is the LS8 execution engine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Config Config // Sizing, with defaults applied.

	Memory   *memory.Memory       // Main memory.
	Register *memory.RegisterFile // Register bank.
	Stack    Stack                // Stack, addressed by SP.
	Pc       int                  // Address of the next instruction.
	Fl       Flags                // Flags from the last CMP.

	Output io.Channel // Receives PRN and PRA events; nil discards them.

	State State // Current execution state.
	Err   error // Terminal error when faulted, an *ErrFault.
	Ticks int   // Instructions executed since reset.
}

// NewCpu creates a new CPU in the ready state.
func NewCpu(config Config) (cpu *Cpu, err error) {
	config, err = config.withDefaults()
	if err != nil {
		return
	}

	mem := memory.NewMemory(config.Width, config.MemorySize)
	cpu = &Cpu{
		Config:   config,
		Memory:   mem,
		Register: memory.NewRegisterFile(config.Width, config.Registers),
		Stack:    Stack{Memory: mem},
	}
	cpu.Stack.Reset()

	return
}

// Defines for the cpu, as assembler equates.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"WIDTH":       fmt.Sprintf("%d", cpu.Config.Width),
		"MEMORY_SIZE": fmt.Sprintf("%d", cpu.Config.MemorySize),
		"REGISTERS":   fmt.Sprintf("%d", cpu.Config.Registers),
		"STACK_TOP":   fmt.Sprintf("%d", cpu.Memory.Len()),
	})
}

// Sp returns the stack pointer.
func (cpu *Cpu) Sp() int {
	return cpu.Stack.Pointer
}

// Reset the CPU state.
// - Zeros memory, registers and flags.
// - Moves the stack pointer to the top of memory.
// - Rewinds the output channel.
// - Returns to the ready state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Info("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Register.Reset()
	cpu.Stack.Reset()
	cpu.Pc = 0
	cpu.Fl = 0
	cpu.State = STATE_READY
	cpu.Err = nil
	cpu.Ticks = 0

	if cpu.Output != nil {
		cpu.Output.Rewind()
	}
}

// Load writes program into memory, starting at start.
func (cpu *Cpu) Load(program []int64, start int) (err error) {
	return memory.Load(cpu.Memory, program, start)
}

// fault moves the CPU to the faulted state, recording err.
func (cpu *Cpu) fault(err error) error {
	cpu.State = STATE_FAULTED
	cpu.Err = &ErrFault{Pc: cpu.Pc, Err: err}

	if cpu.Verbose {
		log.WithFields(log.Fields{"pc": cpu.Pc, "ticks": cpu.Ticks}).Warn(err)
	}

	return cpu.Err
}

// Run executes instructions until the CPU halts or faults.
func (cpu *Cpu) Run() (err error) {
	return cpu.RunContext(context.Background())
}

// RunContext executes instructions until the CPU halts or faults, checking
// ctx once per instruction. Cancellation faults the CPU with ctx.Err().
func (cpu *Cpu) RunContext(ctx context.Context) (err error) {
	if cpu.State.Terminal() {
		err = ErrTerminated
		return
	}

	for cpu.State != STATE_HALTED {
		err = ctx.Err()
		if err != nil {
			return cpu.fault(err)
		}

		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Tick executes a single instruction cycle.
// A halted or faulted CPU returns ErrTerminated without changing state.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.State {
	case STATE_HALTED, STATE_FAULTED:
		err = ErrTerminated
		return
	case STATE_READY:
		cpu.State = STATE_RUNNING
	}

	if cpu.Config.Limit > 0 && cpu.Ticks >= cpu.Config.Limit {
		return cpu.fault(ErrStepLimit)
	}

	inst, operands, err := cpu.Fetch()
	if err != nil {
		return cpu.fault(err)
	}

	err = cpu.Execute(inst, operands)
	if err != nil {
		return cpu.fault(err)
	}

	return
}

// Fetch reads and decodes the instruction at the PC, and its operands.
// No operands are read for an undecodable opcode.
func (cpu *Cpu) Fetch() (inst Instruction, operands []word.Word, err error) {
	opcode, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		return
	}

	inst, err = Decode(opcode)
	if err != nil {
		return
	}

	operands = make([]word.Word, inst.Operands)
	for n := range operands {
		operands[n], err = cpu.Memory.Read(cpu.Pc + 1 + n)
		if err != nil {
			return
		}
	}

	return
}

// reg returns the value of the register named by an operand.
func (cpu *Cpu) reg(operand word.Word) (value word.Word, err error) {
	return cpu.Register.Get(operand.Int())
}

// emit sends an event to the output channel, if any.
func (cpu *Cpu) emit(kind io.EventKind, operand word.Word) (err error) {
	value, err := cpu.reg(operand)
	if err != nil {
		return
	}

	if cpu.Output == nil {
		return
	}

	return cpu.Output.Send(io.Event{Kind: kind, Value: value})
}

// branchCond is the flag test of each jump; JMP always jumps.
var branchCond = map[Opcode]func(fl Flags) bool{
	OP_JMP: func(fl Flags) bool { return true },
	OP_JEQ: func(fl Flags) bool { return fl&FLAG_E != 0 },
	OP_JNE: func(fl Flags) bool { return fl&FLAG_E == 0 },
	OP_JGT: func(fl Flags) bool { return fl&FLAG_G != 0 },
	OP_JLT: func(fl Flags) bool { return fl&FLAG_L != 0 },
	OP_JLE: func(fl Flags) bool { return fl&(FLAG_L|FLAG_E) != 0 },
	OP_JGE: func(fl Flags) bool { return fl&(FLAG_G|FLAG_E) != 0 },
}

// branch executes an instruction that sets the PC, updating next.
func (cpu *Cpu) branch(inst Instruction, operands []word.Word, next *int) (err error) {
	switch inst.Opcode {
	case OP_CALL:
		var target word.Word
		target, err = cpu.reg(operands[0])
		if err != nil {
			return
		}
		err = cpu.Stack.Push(word.New(cpu.Config.Width, int64(*next)))
		if err != nil {
			return
		}
		*next = target.Int()
	case OP_RET:
		var target word.Word
		target, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
		*next = target.Int()
	default:
		cond, ok := branchCond[inst.Opcode]
		if !ok {
			err = ErrInvalidOpcode(inst.Opcode)
			return
		}
		if !cond(cpu.Fl) {
			return
		}
		var target word.Word
		target, err = cpu.reg(operands[0])
		if err != nil {
			return
		}
		*next = target.Int()
	}

	return
}

// Execute executes a single decoded instruction with its operands.
func (cpu *Cpu) Execute(inst Instruction, operands []word.Word) (err error) {
	if cpu.Verbose {
		log.WithFields(log.Fields{"pc": cpu.Pc, "op": inst.Name}).Info(operands)
	}

	if len(operands) != inst.Operands {
		err = ErrOperandCount
		return
	}

	next_pc := cpu.Pc + 1 + len(operands)

	switch {
	case inst.Alu:
		var a, b word.Word
		a, err = cpu.reg(operands[0])
		if err != nil {
			return
		}
		b = word.New(a.Width(), 0)
		if len(operands) > 1 {
			b, err = cpu.reg(operands[1])
			if err != nil {
				return
			}
		}
		var result word.Word
		var effect FlagEffect
		result, effect, err = Alu(inst.Opcode.AluOp(), a, b)
		if err != nil {
			return
		}
		cpu.Fl = effect.Apply(cpu.Fl)
		if inst.WriteBack {
			err = cpu.Register.Put(operands[0].Int(), result)
			if err != nil {
				return
			}
		}
	case inst.SetsPc:
		err = cpu.branch(inst, operands, &next_pc)
	case inst.Opcode == OP_NOP:
		// pass
	case inst.Opcode == OP_HLT:
		cpu.State = STATE_HALTED
		cpu.Ticks++
		return
	case inst.Opcode == OP_LDI:
		err = cpu.Register.Put(operands[0].Int(), operands[1])
	case inst.Opcode == OP_LD:
		var address, value word.Word
		address, err = cpu.reg(operands[1])
		if err != nil {
			return
		}
		value, err = cpu.Memory.Read(address.Int())
		if err != nil {
			return
		}
		err = cpu.Register.Put(operands[0].Int(), value)
	case inst.Opcode == OP_ST:
		var address, value word.Word
		address, err = cpu.reg(operands[0])
		if err != nil {
			return
		}
		value, err = cpu.reg(operands[1])
		if err != nil {
			return
		}
		err = cpu.Memory.Store(address.Int(), value)
	case inst.Opcode == OP_PUSH:
		var value word.Word
		value, err = cpu.reg(operands[0])
		if err != nil {
			return
		}
		err = cpu.Stack.Push(value)
	case inst.Opcode == OP_POP:
		// Validate the destination before touching the stack.
		_, err = cpu.reg(operands[0])
		if err != nil {
			return
		}
		var value word.Word
		value, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
		err = cpu.Register.Put(operands[0].Int(), value)
	case inst.Opcode == OP_PRN:
		err = cpu.emit(io.EVENT_NUMBER, operands[0])
	case inst.Opcode == OP_PRA:
		err = cpu.emit(io.EVENT_CHAR, operands[0])
	default:
		err = ErrInvalidOpcode(inst.Opcode)
	}

	if err != nil {
		return
	}

	cpu.Pc = next_pc
	cpu.Ticks++

	return
}
