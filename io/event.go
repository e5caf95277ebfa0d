package io

import (
	"github.com/ezrec/ls8/word"
)

// EventKind is the type of an output event.
type EventKind int

const (
	EVENT_NUMBER = EventKind(0) // Numeric print (PRN).
	EVENT_CHAR   = EventKind(1) // Character print (PRA).
)

// Event is a single value printed by the CPU.
type Event struct {
	Kind  EventKind
	Value word.Word
}

// String formats numbers as zero padded hexadecimal, and characters
// as the character itself.
func (ev Event) String() string {
	if ev.Kind == EVENT_CHAR {
		return string(rune(ev.Value.Value()))
	}

	return ev.Value.String()
}
