package memory

import (
	"github.com/ezrec/ls8/translate"
)

var f = translate.From

// ErrOutOfBounds is returned for an address or register index outside
// of its bank.
type ErrOutOfBounds struct {
	Space  string // "memory" or "register"
	Index  int    // Offending address or register index.
	Length int    // Length of the bank.
}

func (err ErrOutOfBounds) Error() string {
	return f("%v index %d out of bounds [0, %d)", err.Space, err.Index, err.Length)
}

// Is matches any ErrOutOfBounds, regardless of its location.
func (err ErrOutOfBounds) Is(target error) (ok bool) {
	_, ok = target.(ErrOutOfBounds)
	return
}
