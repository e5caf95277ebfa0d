package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrTerminated   = errors.New(f("cpu already terminated"))
	ErrStackEmpty   = errors.New(f("stack empty"))
	ErrStackFull    = errors.New(f("stack full"))
	ErrDivideByZero = errors.New(f("divide by zero"))
	ErrOperandCount = errors.New(f("operand count mismatch"))
	ErrStepLimit    = errors.New(f("step limit exceeded"))
	ErrWidth        = errors.New(f("word width invalid"))
	ErrMemorySize   = errors.New(f("memory size invalid"))
	ErrRegisters    = errors.New(f("register count invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrMacroRecursion     = errors.New(f(".macro expands itself"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrInvalidOpcode is a fetched opcode with no decode rule.
type ErrInvalidOpcode uint64

func (eo ErrInvalidOpcode) Error() string {
	return f("invalid opcode 0x%02X", uint64(eo))
}

func (eo ErrInvalidOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrInvalidOpcode)
	return
}

// ErrUnsupportedOperation is an ALU operation the ALU does not implement.
type ErrUnsupportedOperation AluOp

func (eu ErrUnsupportedOperation) Error() string {
	return f("unsupported alu operation %v", AluOp(eu))
}

func (eu ErrUnsupportedOperation) Is(err error) (ok bool) {
	_, ok = err.(ErrUnsupportedOperation)
	return
}

// ErrFault is the terminal error of a faulted CPU.
type ErrFault struct {
	Pc  int // Address of the faulting instruction.
	Err error
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%02X: %v", err.Pc, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
