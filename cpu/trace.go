package cpu

import (
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/ls8/translate"
	"github.com/ezrec/ls8/word"
)

// Trace is a read-only copy of the CPU state.
type Trace struct {
	State     State
	Pc        int
	Sp        int
	Fl        Flags
	Width     word.Width
	Registers []word.Word
	Memory    []word.Word
}

// Snapshot copies the CPU state; the CPU is not modified.
func (cpu *Cpu) Snapshot() (tr Trace) {
	tr = Trace{
		State: cpu.State,
		Pc:    cpu.Pc,
		Sp:    cpu.Stack.Pointer,
		Fl:    cpu.Fl,
		Width: cpu.Config.Width,
	}

	for _, value := range cpu.Register.Words() {
		tr.Registers = append(tr.Registers, value)
	}
	for _, value := range cpu.Memory.Words() {
		tr.Memory = append(tr.Memory, value)
	}

	return
}

// hex formats a value with the digit count of the trace width.
func (tr Trace) hex(value int) string {
	return fmt.Sprintf("0x%0*X", tr.Width.Digits(), value)
}

// peek formats the memory at address, or dashes when out of bounds.
func (tr Trace) peek(address int) string {
	if address < 0 || address >= len(tr.Memory) {
		return "0x" + strings.Repeat("-", tr.Width.Digits())
	}
	return tr.Memory[address].String()
}

// String formats the trace line:
//
//	TRACE --- PC SP FL | [PC] [PC+1] [PC+2] | R0 R1 ... Rn
func (tr Trace) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "TRACE --- %v %v %v | %v %v %v |",
		tr.hex(tr.Pc), tr.hex(tr.Sp), tr.hex(int(tr.Fl)),
		tr.peek(tr.Pc), tr.peek(tr.Pc+1), tr.peek(tr.Pc+2))

	for _, value := range tr.Registers {
		sb.WriteString(" ")
		sb.WriteString(value.String())
	}

	return sb.String()
}

// Dump writes the memory contents, sixteen words per line.
func (tr Trace) Dump(w io.Writer) (err error) {
	for base := 0; base < len(tr.Memory); base += 16 {
		_, err = translate.Fprintf(w, "%v:", tr.hex(base))
		if err != nil {
			return
		}
		for _, value := range tr.Memory[base:min(base+16, len(tr.Memory))] {
			_, err = translate.Fprintf(w, " %v", value)
			if err != nil {
				return
			}
		}
		_, err = io.WriteString(w, "\n")
		if err != nil {
			return
		}
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	tr := cpu.Snapshot()

	text += fmt.Sprintf("% 5s: %v\n", "state", tr.State)
	text += fmt.Sprintf("% 5s: %v\n", "pc", tr.hex(tr.Pc))
	text += fmt.Sprintf("% 5s: %v\n", "sp", tr.hex(tr.Sp))

	var fl []string
	for _, bit := range []struct {
		flag Flags
		name string
	}{{FLAG_L, "L"}, {FLAG_G, "G"}, {FLAG_E, "E"}} {
		if tr.Fl&bit.flag != 0 {
			fl = append(fl, bit.name)
		} else {
			fl = append(fl, "-")
		}
	}
	text += fmt.Sprintf("% 5s: %v\n", "fl", strings.Join(fl, ""))

	for n, value := range tr.Registers {
		text += fmt.Sprintf("% 5s: %v\n", fmt.Sprintf("r%d", n), value)
	}

	return
}
