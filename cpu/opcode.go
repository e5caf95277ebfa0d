package cpu

import (
	"fmt"

	"github.com/ezrec/ls8/word"
)

// Opcode is an LS8 instruction byte, encoded as AABCDDDD.
type Opcode uint8

const (
	OP_NOP  = Opcode(0b00000000) // nop
	OP_HLT  = Opcode(0b00000001) // hlt
	OP_RET  = Opcode(0b00010001) // ret
	OP_PUSH = Opcode(0b01000101) // push
	OP_POP  = Opcode(0b01000110) // pop
	OP_PRN  = Opcode(0b01000111) // prn
	OP_PRA  = Opcode(0b01001000) // pra
	OP_CALL = Opcode(0b01010000) // call
	OP_JMP  = Opcode(0b01010100) // jmp
	OP_JEQ  = Opcode(0b01010101) // jeq
	OP_JNE  = Opcode(0b01010110) // jne
	OP_JGT  = Opcode(0b01010111) // jgt
	OP_JLT  = Opcode(0b01011000) // jlt
	OP_JLE  = Opcode(0b01011001) // jle
	OP_JGE  = Opcode(0b01011010) // jge
	OP_INC  = Opcode(0b01100101) // inc
	OP_DEC  = Opcode(0b01100110) // dec
	OP_NOT  = Opcode(0b01101001) // not
	OP_LDI  = Opcode(0b10000010) // ldi
	OP_LD   = Opcode(0b10000011) // ld
	OP_ST   = Opcode(0b10000100) // st
	OP_ADD  = Opcode(0b10100000) // add
	OP_SUB  = Opcode(0b10100001) // sub
	OP_MUL  = Opcode(0b10100010) // mul
	OP_DIV  = Opcode(0b10100011) // div
	OP_MOD  = Opcode(0b10100100) // mod
	OP_CMP  = Opcode(0b10100111) // cmp
	OP_AND  = Opcode(0b10101000) // and
	OP_OR   = Opcode(0b10101010) // or
	OP_XOR  = Opcode(0b10101011) // xor
	OP_SHL  = Opcode(0b10101100) // shl
	OP_SHR  = Opcode(0b10101101) // shr
)

// instructionSet maps every decodable opcode to its mnemonic.
var instructionSet = map[Opcode]string{
	OP_NOP:  "nop",
	OP_HLT:  "hlt",
	OP_RET:  "ret",
	OP_PUSH: "push",
	OP_POP:  "pop",
	OP_PRN:  "prn",
	OP_PRA:  "pra",
	OP_CALL: "call",
	OP_JMP:  "jmp",
	OP_JEQ:  "jeq",
	OP_JNE:  "jne",
	OP_JGT:  "jgt",
	OP_JLT:  "jlt",
	OP_JLE:  "jle",
	OP_JGE:  "jge",
	OP_INC:  "inc",
	OP_DEC:  "dec",
	OP_NOT:  "not",
	OP_LDI:  "ldi",
	OP_LD:   "ld",
	OP_ST:   "st",
	OP_ADD:  "add",
	OP_SUB:  "sub",
	OP_MUL:  "mul",
	OP_DIV:  "div",
	OP_MOD:  "mod",
	OP_CMP:  "cmp",
	OP_AND:  "and",
	OP_OR:   "or",
	OP_XOR:  "xor",
	OP_SHL:  "shl",
	OP_SHR:  "shr",
}

// Operands returns the number of operand words following the opcode (AA).
func (op Opcode) Operands() int {
	return int(op >> 6)
}

// IsAlu returns true if the opcode is dispatched to the ALU (B).
func (op Opcode) IsAlu() bool {
	return (op & 0b0010_0000) != 0
}

// SetsPc returns true if the opcode may set the PC itself (C).
func (op Opcode) SetsPc() bool {
	return (op & 0b0001_0000) != 0
}

// AluOp returns the ALU operation (DDDD) of an ALU opcode.
func (op Opcode) AluOp() AluOp {
	return AluOp(op & 0xf)
}

func (op Opcode) String() string {
	name, ok := instructionSet[op]
	if !ok {
		return fmt.Sprintf("op(0x%02X)", uint8(op))
	}
	return name
}

// Instruction is a decoded opcode.
type Instruction struct {
	Opcode    Opcode
	Name      string
	Operands  int  // Operand words following the opcode.
	Alu       bool // Executed by the ALU.
	SetsPc    bool // Bypasses the automatic PC advance when taken.
	WriteBack bool // Writes a result into the register named by the first operand.
}

// Decode an opcode word into an Instruction.
func Decode(value word.Word) (inst Instruction, err error) {
	if value.Value() > 0xff {
		err = ErrInvalidOpcode(value.Value())
		return
	}

	op := Opcode(value.Value())
	name, ok := instructionSet[op]
	if !ok {
		err = ErrInvalidOpcode(value.Value())
		return
	}

	inst = Instruction{
		Opcode:   op,
		Name:     name,
		Operands: op.Operands(),
		Alu:      op.IsAlu(),
		SetsPc:   op.SetsPc(),
	}

	switch {
	case inst.Alu:
		inst.WriteBack = op.AluOp() != ALU_OP_CMP
	case op == OP_LDI, op == OP_LD, op == OP_POP:
		inst.WriteBack = true
	}

	return
}

func (inst Instruction) String() string {
	return inst.Name
}
