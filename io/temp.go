package io

import (
	"strings"
)

// Temporary keeps events in memory.
// A Capacity of zero means unbounded.
type Temporary struct {
	Capacity int

	Events []Event
}

var _ Channel = (*Temporary)(nil)

// Rewind discards all recorded events.
func (temp *Temporary) Rewind() {
	temp.Events = temp.Events[:0]
}

// Send records an event.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Send(event Event) (err error) {
	if temp.Capacity > 0 && len(temp.Events) >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Events = append(temp.Events, event)
	return
}

// Strings returns the formatted text of every recorded event.
func (temp *Temporary) Strings() (text []string) {
	for _, ev := range temp.Events {
		text = append(text, ev.String())
	}
	return
}

// String returns all recorded events as Tape would write them.
func (temp *Temporary) String() string {
	var sb strings.Builder
	for _, ev := range temp.Events {
		sb.WriteString(ev.String())
		if ev.Kind == EVENT_NUMBER {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
