package cpu

import (
	"iter"
)

// Statement is a line of assembled source with the words it generated.
type Statement struct {
	LineNo  int            // Source line number.
	Address int            // Address of the first code.
	Words   []string       // Source words, after expansion.
	Codes   []int64        // Generated memory words.
	Links   map[int]string // Code index to label, resolved at link time.
}

// Program is an assembled memory image.
type Program struct {
	Origin     int // Load address of the first statement.
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug returns the statement that generated the code at address.
func (prog *Program) Debug(address int) (dbg Debug) {
	for n, st := range prog.Statements {
		if address >= st.Address && address < st.Address+len(st.Codes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     address - st.Address,
			}
			break
		}
	}

	return
}

// Binary returns the memory image, to be loaded at Origin.
func (prog *Program) Binary() (bins []int64) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

// Codes iterates over the address and value of every generated code.
func (prog *Program) Codes() iter.Seq2[int, int64] {
	return func(yield func(address int, code int64) bool) {
		for _, st := range prog.Statements {
			for n, code := range st.Codes {
				if !yield(st.Address+n, code) {
					return
				}
			}
		}
	}
}
