// Package io provides output channels for the LS8 emulator.
// A channel receives the print events produced by PRN and PRA: either
// delivered to a writer as text (Tape), or kept in memory (Temporary).
package io

// Channel defines the interface for all output channels.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Send delivers a single event to the channel.
	Send(event Event) error
}
