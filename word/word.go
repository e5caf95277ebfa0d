// Package word implements the fixed-width, self-masking machine word.
//
// Every Word carries its bit width and is masked to that width when it is
// constructed, so a stored value can never fall outside [0, 2^width - 1].
package word

import (
	"fmt"
)

// Width is a word size in bits.
type Width uint

const (
	DEFAULT_WIDTH = Width(8)  // LS8 native word size.
	MAX_WIDTH     = Width(64) // Widest representable word.
)

// Valid returns true if the width is in [1, MAX_WIDTH].
func (w Width) Valid() bool {
	return w >= 1 && w <= MAX_WIDTH
}

// Mask returns the bit mask for the width, (1 << w) - 1.
func (w Width) Mask() uint64 {
	if w >= MAX_WIDTH {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// Digits returns the number of hexadecimal digits needed to print a word.
func (w Width) Digits() int {
	return int(w+3) / 4
}

// Apply masks a raw value to the width.
// Negative values wrap with two's complement semantics.
func (w Width) Apply(raw int64) uint64 {
	return uint64(raw) & w.Mask()
}

// Word is an immutable masked unsigned value.
type Word struct {
	value uint64
	width Width
}

// New creates a Word of the given width, masking raw.
func New(width Width, raw int64) Word {
	return Word{value: width.Apply(raw), width: width}
}

// FromUint creates a Word of the given width from an unsigned raw value.
func FromUint(width Width, raw uint64) Word {
	return Word{value: raw & width.Mask(), width: width}
}

// Value returns the masked value.
func (w Word) Value() uint64 {
	return w.value
}

// Int returns the masked value as an int, for use as an index.
func (w Word) Int() int {
	return int(w.value)
}

// Width returns the width of the word.
func (w Word) Width() Width {
	return w.width
}

// String formats the word as zero padded upper case hexadecimal, ie 0x08.
func (w Word) String() string {
	return fmt.Sprintf("0x%0*X", w.width.Digits(), w.value)
}
