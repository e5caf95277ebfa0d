package io

import (
	"io"
)

// Tape writes events as text to an io.Writer.
// Numbers are written one per line, characters are written as-is.
type Tape struct {
	Output io.Writer

	Count int // Events written since the last rewind.
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape; only the counter is reset.
func (tc *Tape) Rewind() {
	tc.Count = 0
}

// Send writes the event to the output.
func (tc *Tape) Send(event Event) (err error) {
	if tc.Output == nil {
		err = ErrNoOutput
		return
	}

	text := event.String()
	if event.Kind == EVENT_NUMBER {
		text += "\n"
	}

	_, err = io.WriteString(tc.Output, text)
	if err != nil {
		return
	}

	tc.Count++
	return
}
