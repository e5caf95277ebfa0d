package cpu

import (
	"github.com/ezrec/ls8/word"
)

//go:generate go tool stringer -linecomment -type=AluOp

// AluOp is an ALU operation type, the low nibble of an ALU opcode.
type AluOp int

const (
	ALU_OP_ADD = AluOp(0x0) // add
	ALU_OP_SUB = AluOp(0x1) // sub
	ALU_OP_MUL = AluOp(0x2) // mul
	ALU_OP_DIV = AluOp(0x3) // div
	ALU_OP_MOD = AluOp(0x4) // mod
	ALU_OP_INC = AluOp(0x5) // inc
	ALU_OP_DEC = AluOp(0x6) // dec
	ALU_OP_CMP = AluOp(0x7) // cmp
	ALU_OP_AND = AluOp(0x8) // and
	ALU_OP_NOT = AluOp(0x9) // not
	ALU_OP_OR  = AluOp(0xa) // or
	ALU_OP_XOR = AluOp(0xb) // xor
	ALU_OP_SHL = AluOp(0xc) // shl
	ALU_OP_SHR = AluOp(0xd) // shr
)

// Flags is the FL register, 00000LGE.
type Flags uint8

const (
	FLAG_E    = Flags(1 << 0) // Equal
	FLAG_G    = Flags(1 << 1) // Greater than
	FLAG_L    = Flags(1 << 2) // Less than
	FLAG_MASK = FLAG_E | FLAG_G | FLAG_L
)

// FlagEffect describes how an ALU result changes the flags.
// Bits outside Mask are left alone.
type FlagEffect struct {
	Mask  Flags
	Value Flags
}

// Apply the effect to a flags value.
func (fe FlagEffect) Apply(fl Flags) Flags {
	return (fl &^ fe.Mask) | (fe.Value & fe.Mask)
}

// Alu performs the requested ALU action on a and b, returning the result
// masked to the width of a, and the effect on the flags.
// Unary operations ignore b.
func Alu(op AluOp, a, b word.Word) (result word.Word, effect FlagEffect, err error) {
	input := a.Value()
	value := b.Value()

	var output uint64
	switch op {
	case ALU_OP_ADD: // add
		output = input + value
	case ALU_OP_SUB: // sub
		output = input + ((^value) + 1)
	case ALU_OP_MUL: // mul
		output = input * value
	case ALU_OP_DIV: // div
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		output = input / value
	case ALU_OP_MOD: // mod
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		output = input % value
	case ALU_OP_INC: // inc
		output = input + 1
	case ALU_OP_DEC: // dec
		output = input - 1
	case ALU_OP_CMP: // cmp
		output = input
		effect.Mask = FLAG_MASK
		switch {
		case input == value:
			effect.Value = FLAG_E
		case input > value:
			effect.Value = FLAG_G
		default:
			effect.Value = FLAG_L
		}
	case ALU_OP_AND: // and
		output = input & value
	case ALU_OP_NOT: // not
		output = ^input
	case ALU_OP_OR: // or
		output = input | value
	case ALU_OP_XOR: // xor
		output = input ^ value
	case ALU_OP_SHL: // shl
		output = input << value
	case ALU_OP_SHR: // shr
		output = input >> value
	default:
		err = ErrUnsupportedOperation(op)
		return
	}

	result = word.FromUint(a.Width(), output)
	return
}
