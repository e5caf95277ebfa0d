package cpu

import (
	"github.com/ezrec/ls8/memory"
	"github.com/ezrec/ls8/word"
)

// Stack is a descending stack held in main memory.
// Pointer addresses the top item; it equals the memory length when empty.
type Stack struct {
	Memory  *memory.Memory
	Pointer int
}

// Push pre-decrements the pointer and stores value there.
func (s *Stack) Push(value word.Word) (err error) {
	if s.Full() {
		err = ErrStackFull
		return
	}

	err = s.Memory.Store(s.Pointer-1, value)
	if err != nil {
		return
	}

	s.Pointer--
	return
}

// Pop reads the top item and post-increments the pointer.
func (s *Stack) Pop() (value word.Word, err error) {
	value, err = s.Peek()
	if err == nil {
		s.Pointer++
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Pointer >= s.Memory.Len()
}

func (s *Stack) Full() bool {
	return s.Pointer <= 0
}

// Depth returns the number of items on the stack.
func (s *Stack) Depth() int {
	return max(s.Memory.Len()-s.Pointer, 0)
}

func (s *Stack) Peek() (value word.Word, err error) {
	if s.Empty() {
		err = ErrStackEmpty
		return
	}

	return s.Memory.Read(s.Pointer)
}

// Reset moves the pointer to the top of memory.
func (s *Stack) Reset() {
	s.Pointer = s.Memory.Len()
}
