// Package cpu implements the execution engine and assembler for the LS8
// virtual machine.
//
// The CPU consists of a program counter (PC), a bank of general purpose
// registers (R0-R7 by default), a flags register (FL), a stack pointer
// (SP) addressing a stack that grows down from the top of memory, and a
// stateless ALU. Words are masked to the configured width (8 bits by
// default) on every write.
//
// Instructions are encoded as AABCDDDD: AA is the number of operand words
// that follow the opcode, B marks an ALU operation, C marks an instruction
// that sets the PC, and DDDD identifies the instruction.
//
// The assembler translates LS8 assembly text, or listings of raw binary
// words, into a Program image.
package cpu
