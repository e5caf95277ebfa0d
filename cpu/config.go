package cpu

import (
	"github.com/ezrec/ls8/word"
)

const (
	DEFAULT_WIDTH     = word.DEFAULT_WIDTH
	DEFAULT_REGISTERS = 8       // R0-R7
	MAX_MEMORY_SIZE   = 1 << 16 // Largest default address space.
)

// Config sizes a CPU. Zero fields take their defaults.
type Config struct {
	Width      word.Width // Word width in bits.
	MemorySize int        // Words of memory; defaults to 2^Width, at most MAX_MEMORY_SIZE.
	Registers  int        // General purpose registers.
	Limit      int        // Maximum instructions per run; zero is unlimited.
}

// withDefaults returns the config with every zero field filled in.
func (cfg Config) withDefaults() (out Config, err error) {
	out = cfg

	if out.Width == 0 {
		out.Width = DEFAULT_WIDTH
	}
	if !out.Width.Valid() {
		err = ErrWidth
		return
	}

	if out.MemorySize == 0 {
		out.MemorySize = MAX_MEMORY_SIZE
		if out.Width < 16 {
			out.MemorySize = 1 << out.Width
		}
	}
	if out.MemorySize < 0 {
		err = ErrMemorySize
		return
	}

	if out.Registers == 0 {
		out.Registers = DEFAULT_REGISTERS
	}
	if out.Registers < 0 {
		err = ErrRegisters
		return
	}

	return
}
