package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assemble(t *testing.T, asm *Assembler, program []string) *Program {
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)
	return prog
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("1", asm.Equate["FLAG_E"])
	assert.Equal("2", asm.Equate["FLAG_G"])
	assert.Equal("4", asm.Equate["FLAG_L"])
}

func TestAssemblerPrint8(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog := assemble(t, asm, []string{
		"; print8.ls8",
		"LDI R0,8",
		"  prn r0   ; print it",
		"HLT",
	})

	expected := []Statement{
		{2, 0, []string{"LDI", "R0", "8"}, []int64{0b10000010, 0, 8}, nil},
		{3, 3, []string{"prn", "r0"}, []int64{0b01000111, 0}, nil},
		{4, 5, []string{"HLT"}, []int64{0b00000001}, nil},
	}
	assert.Equal(expected, prog.Statements)
	assert.Equal([]int64{0x82, 0, 8, 0x47, 0, 1}, prog.Binary())
}

func TestAssemblerBinary(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog := assemble(t, asm, []string{
		"# From print8.ls8",
		"10000010 # LDI R0,8",
		"00000000",
		"00001000",
		"01000111 # PRN R0",
		"00000000",
		"00000001 # HLT",
	})

	assert.Equal([]int64{0x82, 0, 8, 0x47, 0, 1}, prog.Binary())
	assert.Equal(6, len(prog.Statements))
	assert.Equal(2, prog.Statements[0].LineNo)
}

func TestAssemblerBinaryWidth(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Width: 4}

	prog := assemble(t, asm, []string{
		"1010 0101",
		".byte 10000010",
	})

	assert.Equal([]int64{0xa, 0x5, 10000010}, prog.Binary())

	_, err := asm.Parse(strings.NewReader("1010 12"))
	assert.ErrorIs(err, ErrParseNumber("12"))
}

func TestAssemblerAllInstructions(t *testing.T) {
	assert := assert.New(t)

	for op, name := range instructionSet {
		words := []string{strings.ToUpper(name)}
		for n := range op.Operands() {
			if op == OP_LDI && n == 1 {
				words = append(words, "0x42")
			} else {
				words = append(words, "R3")
			}
		}

		asm := &Assembler{}
		prog := assemble(t, asm, []string{strings.Join(words, " ")})

		binary := prog.Binary()
		assert.Equal(1+op.Operands(), len(binary), name)
		assert.Equal(int64(op), binary[0], name)
		if op == OP_LDI {
			assert.Equal([]int64{int64(OP_LDI), 3, 0x42}, binary)
		}
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog := assemble(t, asm, []string{
		"        LDI R1, loop",
		"        LDI R2, done",
		"loop:   INC R0",
		"        CMP R0, R3",
		"        JEQ R2",
		"        JMP R1",
		"done:   HLT",
	})

	assert.Equal(6, asm.Label["loop"])
	assert.Equal(15, asm.Label["done"])
	assert.Equal([]int64{
		int64(OP_LDI), 1, 6,
		int64(OP_LDI), 2, 15,
		int64(OP_INC), 0,
		int64(OP_CMP), 0, 3,
		int64(OP_JEQ), 2,
		int64(OP_JMP), 1,
		int64(OP_HLT),
	}, prog.Binary())
}

func TestAssemblerOrigin(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Origin: 0x10}

	prog := assemble(t, asm, []string{
		"start: LDI R0, start",
		"HLT",
	})

	assert.Equal(0x10, prog.Origin)
	assert.Equal([]int64{int64(OP_LDI), 0, 0x10, int64(OP_HLT)}, prog.Binary())

	dbg := prog.Debug(0x13)
	assert.NotNil(dbg.Statement)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x12)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(2, dbg.Index)

	assert.Nil(prog.Debug(0).Statement)
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x20")

	prog := assemble(t, asm, []string{
		".equ COUNT 5",
		".equ ACC R2",
		"LDI ACC, COUNT",
		"LDI R1, $(BASE + COUNT * 2)",
		"LDI R0, $(FLAG_E | FLAG_L)",
		"LDI R3, LINENO",
	})

	assert.Equal([]int64{
		int64(OP_LDI), 2, 5,
		int64(OP_LDI), 1, 0x2a,
		int64(OP_LDI), 0, 5,
		int64(OP_LDI), 3, 6,
	}, prog.Binary())
}

func TestAssemblerChar(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog := assemble(t, asm, []string{
		"LDI R0, 'A'",
		".byte 'h' 'i' '\\n' -1",
		"LDI R1, '#'  # hash",
		"LDI R2, ';'  ; semicolon",
		".byte ';','#' ; both",
	})

	assert.Equal([]int64{
		int64(OP_LDI), 0, 'A',
		'h', 'i', '\n', -1,
		int64(OP_LDI), 1, '#',
		int64(OP_LDI), 2, ';',
		';', '#',
	}, prog.Binary())
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog := assemble(t, asm, []string{
		".macro PRINT reg value",
		"        LDI reg, value",
		"        PRN reg",
		".endm",
		".macro SPIN",
		"        LDI R7, @top",
		"@top:   JMP R7",
		".endm",
		"PRINT R1 0x33",
		"SPIN",
		"SPIN",
	})

	assert.Equal([]int64{
		int64(OP_LDI), 1, 0x33,
		int64(OP_PRN), 1,
		int64(OP_LDI), 7, 8,
		int64(OP_JMP), 7,
		int64(OP_LDI), 7, 13,
		int64(OP_JMP), 7,
	}, prog.Binary())
	assert.Equal(8, asm.Label["SPIN_2_top"])
	assert.Equal(13, asm.Label["SPIN_3_top"])
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program []string
		err     error
		lineno  int
	}){
		{[]string{"FOO R0"}, ErrInstructionInvalid, 1},
		{[]string{"HLT", "PRN"}, ErrOpcodeValueMissing, 2},
		{[]string{"HLT R0"}, ErrOpcodeExtraArgs, 1},
		{[]string{"PRN 0"}, ErrRegisterInvalid, 1},
		{[]string{"PRN Rx"}, ErrRegisterInvalid, 1},
		{[]string{"LDI R0, 0x"}, ErrParseNumber("0x"), 1},
		{[]string{"LDI R0, nowhere"}, ErrLabelMissing("nowhere"), 1},
		{[]string{"a: HLT", "a: HLT"}, ErrLabelDuplicate, 2},
		{[]string{".equ A 1", ".equ A 2"}, ErrEquateDuplicate, 2},
		{[]string{".equ A"}, ErrEquateSyntax, 1},
		{[]string{".macro M", ".macro N"}, ErrMacroNesting, 2},
		{[]string{".macro M", ".endm", ".macro M"}, ErrMacroDuplicate, 3},
		{[]string{".macro M"}, ErrMacroLonely, 1},
		{[]string{".endm"}, ErrMacroLonelyEndm, 1},
		{[]string{".macro M a", ".endm", "M"}, ErrMacroSyntax, 3},
		{[]string{".byte"}, ErrOpcodeValueMissing, 1},
		{[]string{".macro LOOP", "LOOP", ".endm", "LOOP"}, ErrMacroRecursion, 4},
		{[]string{".macro A", "B", ".endm", ".macro B", "A", ".endm", "HLT", "A"}, ErrMacroRecursion, 8},
		{[]string{"LDI R0, $(1 +)"}, nil, 1},
		{[]string{"LDI R0, $(\"x\")"}, ErrParseExpression(`"x"`), 1},
	}

	for _, entry := range table {
		asm := &Assembler{}
		text := strings.Join(entry.program, "\n")
		_, err := asm.Parse(strings.NewReader(text))
		if !assert.Error(err, text) {
			continue
		}
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, text)
		}

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), text) {
			assert.Equal(entry.lineno, syntax.LineNo, text)
		}
	}
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader(strings.Join([]string{
		".macro BAD",
		"        PRN 7",
		".endm",
		"BAD",
	}, "\n")))

	assert.ErrorIs(err, ErrRegisterInvalid)

	var macro *ErrMacro
	assert.True(errors.As(err, &macro))
	assert.Equal("BAD", macro.Macro)
	assert.Equal(2, macro.Line)
}

func TestAssemblerMacroNested(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog := assemble(t, asm, []string{
		".macro TWICE reg",
		"        PRN reg",
		"        PRN reg",
		".endm",
		".macro FOUR reg",
		"        TWICE reg",
		"        TWICE reg",
		".endm",
		"FOUR R1",
		"TWICE R2",
	})

	assert.Equal([]int64{
		int64(OP_PRN), 1, int64(OP_PRN), 1,
		int64(OP_PRN), 1, int64(OP_PRN), 1,
		int64(OP_PRN), 2, int64(OP_PRN), 2,
	}, prog.Binary())

	var macro *ErrMacro
	_, err := asm.Parse(strings.NewReader(".macro LOOP\nLOOP\n.endm\nLOOP"))
	assert.ErrorIs(err, ErrMacroRecursion)
	if assert.True(errors.As(err, &macro)) {
		assert.Equal("LOOP", macro.Macro)
		assert.Equal(2, macro.Line)
	}
}

func TestAssemblerReuse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	assemble(t, asm, []string{"a: HLT", ".equ X 1"})
	prog := assemble(t, asm, []string{"a: NOP", ".equ X 2", "LDI R0, X"})

	assert.Equal([]int64{int64(OP_NOP), int64(OP_LDI), 0, 2}, prog.Binary())
}
