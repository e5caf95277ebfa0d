// Package memory implements the word-addressed banks of the LS8 machine:
// main memory and the general purpose register file.
package memory

import (
	"iter"

	"github.com/ezrec/ls8/word"
)

const (
	SPACE_MEMORY   = "memory"
	SPACE_REGISTER = "register"
)

// bank is a zero indexed, fixed length array of masked words.
type bank struct {
	space string
	width word.Width
	cells []uint64
}

func newBank(space string, width word.Width, length int) bank {
	return bank{
		space: space,
		width: width,
		cells: make([]uint64, max(length, 0)),
	}
}

func (b *bank) check(index int) (err error) {
	if index < 0 || index >= len(b.cells) {
		err = ErrOutOfBounds{Space: b.space, Index: index, Length: len(b.cells)}
	}
	return
}

func (b *bank) read(index int) (value word.Word, err error) {
	err = b.check(index)
	if err != nil {
		return
	}

	value = word.FromUint(b.width, b.cells[index])
	return
}

func (b *bank) write(index int, raw uint64) (err error) {
	err = b.check(index)
	if err != nil {
		return
	}

	b.cells[index] = raw & b.width.Mask()
	return
}

// Len returns the number of words in the bank.
func (b *bank) Len() int {
	return len(b.cells)
}

// Width returns the word width of the bank.
func (b *bank) Width() word.Width {
	return b.width
}

// Reset zero fills the bank.
func (b *bank) Reset() {
	clear(b.cells)
}

// Words iterates over every index and word in the bank.
func (b *bank) Words() iter.Seq2[int, word.Word] {
	return func(yield func(index int, value word.Word) bool) {
		for n, cell := range b.cells {
			if !yield(n, word.FromUint(b.width, cell)) {
				return
			}
		}
	}
}

// Memory is the main memory of the machine.
type Memory struct {
	bank
}

// NewMemory creates a zeroed memory of length words.
func NewMemory(width word.Width, length int) *Memory {
	return &Memory{bank: newBank(SPACE_MEMORY, width, length)}
}

// Read the word at address.
func (mem *Memory) Read(address int) (value word.Word, err error) {
	return mem.read(address)
}

// Write masks raw to the memory width and stores it at address.
func (mem *Memory) Write(address int, raw int64) (err error) {
	return mem.write(address, uint64(raw))
}

// Store writes a word at address, masking it to the memory width.
func (mem *Memory) Store(address int, value word.Word) (err error) {
	return mem.write(address, value.Value())
}

// RegisterFile is the general purpose register bank.
type RegisterFile struct {
	bank
}

// NewRegisterFile creates count zeroed registers.
func NewRegisterFile(width word.Width, count int) *RegisterFile {
	return &RegisterFile{bank: newBank(SPACE_REGISTER, width, count)}
}

// Get the value of register index.
func (rf *RegisterFile) Get(index int) (value word.Word, err error) {
	return rf.read(index)
}

// Set masks raw and stores it in register index.
func (rf *RegisterFile) Set(index int, raw int64) (err error) {
	return rf.write(index, uint64(raw))
}

// Put stores a word in register index.
func (rf *RegisterFile) Put(index int, value word.Word) (err error) {
	return rf.write(index, value.Value())
}
