// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/ls8/word"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"FLAG_E": fmt.Sprintf("%d", FLAG_E),
	"FLAG_G": fmt.Sprintf("%d", FLAG_G),
	"FLAG_L": fmt.Sprintf("%d", FLAG_L),
}

// mnemonicMap maps instruction names to opcodes.
var mnemonicMap = make(map[string]Opcode, len(instructionSet))

func init() {
	for op, name := range instructionSet {
		mnemonicMap[name] = op
	}
}

// Assembler is a single pass macro assembler for LS8.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Width     word.Width  // Width of raw binary words; defaults to 8.
	Origin    int         // Address of the first generated code.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int             // Count of macro expansions, for local labels.
	expanding  map[string]bool // Macros currently being expanded.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) width() word.Width {
	if asm.Width == 0 {
		return word.DEFAULT_WIDTH
	}
	return asm.Width
}

// isBinary returns true for a raw binary word of exactly the assembler width,
// as found in .ls8 listings.
func (asm *Assembler) isBinary(text string) bool {
	if len(text) != int(asm.width()) {
		return false
	}
	return strings.Trim(text, "01") == ""
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(text string) (value int64, err error) {
	if asm.isBinary(text) {
		var u64 uint64
		u64, err = strconv.ParseUint(text, 2, 64)
		value = int64(u64)
		return
	}

	value, err = strconv.ParseInt(text, 0, 64)
	if err == nil {
		return
	}

	u64, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		err = ErrParseNumber(text)
		return
	}

	value = int64(u64)
	return
}

// registerOf returns the index of a register name, r0, r1, ...
func (asm *Assembler) registerOf(text string) (index int64, err error) {
	if len(text) < 2 || (text[0] != 'r' && text[0] != 'R') {
		err = ErrRegisterInvalid
		return
	}

	index, err = strconv.ParseInt(text[1:], 10, 16)
	if err != nil || index < 0 {
		err = ErrRegisterInvalid
		return
	}

	return
}

// isLabel returns true if the word could name a label.
var isLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`).MatchString

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

var (
	reChar  = regexp.MustCompile(`'\\?[^']'`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
)

// stripComment removes a trailing ';' or '#' comment, leaving
// character literals such as '#' in place.
func stripComment(text string) string {
	quoted := reChar.FindAllStringIndex(text, -1)
	for n, r := range text {
		if r != ';' && r != '#' {
			continue
		}
		inside := slices.ContainsFunc(quoted, func(span []int) bool {
			return n > span[0] && n < span[1]-1
		})
		if !inside {
			return text[:n]
		}
	}
	return text
}

// splitWords splits a line on spaces, tabs and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// parseLine parses a single line into words, handling equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reChar.ReplaceAllStringFunc(line, func(text string) string {
		str := text[1 : len(text)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			default:
				return text
			}
		} else if len(str) != 1 {
			return text
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, text := range words {
		equate, ok := asm.Equate[text]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentAddress()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro expansion
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		if asm.expanding[name] {
			err = ErrMacroRecursion
			return
		}
		asm.expanding[name] = true
		defer delete(asm.expanding, name)

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}
		words = nil
		return
	}

	return
}

// currentAddress gets the address of the next generated code.
func (asm *Assembler) currentAddress() int {
	if len(asm.Statement) == 0 {
		return asm.Origin
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Address + len(last.Codes)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int)
	asm.Statement = asm.Statement[:0]
	asm.Macro = make(map[string](*Macro))
	asm.expansions = 0
	asm.expanding = make(map[string]bool)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.WithField("line", lineno).Info(text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]
		for index, label := range st.Links {
			address, ok := asm.Label[label]
			if !ok {
				lineno = st.LineNo
				line = strings.Join(st.Words, " ")
				err = ErrLabelMissing(label)
				return
			}
			st.Codes[index] = int64(address)
		}
	}

	prog = &Program{
		Origin:     asm.Origin,
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// value appends the code for a value word, or records a label link.
func (asm *Assembler) value(st *Statement, text string) (err error) {
	value, err := asm.valueOf(text)
	if err != nil {
		if !isLabel(text) {
			return
		}
		err = nil
		if st.Links == nil {
			st.Links = make(map[int]string)
		}
		st.Links[len(st.Codes)] = text
	}

	st.Codes = append(st.Codes, value)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	st := Statement{
		LineNo:  lineno,
		Address: asm.currentAddress(),
		Words:   words,
	}

	defer func() {
		if err != nil || len(st.Codes) == 0 {
			return
		}
		asm.Statement = append(asm.Statement, st)
	}()

	// Raw listing words.
	if asm.isBinary(words[0]) {
		for _, text := range words {
			if !asm.isBinary(text) {
				err = ErrParseNumber(text)
				return
			}
			err = asm.value(&st, text)
			if err != nil {
				return
			}
		}
		return
	}

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	switch mnemonic {
	case ".byte", ".db":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, text := range args {
			err = asm.value(&st, text)
			if err != nil {
				return
			}
		}
		return
	}

	op, ok := mnemonicMap[mnemonic]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if len(args) < op.Operands() {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > op.Operands() {
		err = ErrOpcodeExtraArgs
		return
	}

	st.Codes = append(st.Codes, int64(op))
	for n, text := range args {
		// Only the second operand of LDI is an immediate.
		if op == OP_LDI && n == 1 {
			err = asm.value(&st, text)
			if err != nil {
				return
			}
			continue
		}
		var reg int64
		reg, err = asm.registerOf(text)
		if err != nil {
			return
		}
		st.Codes = append(st.Codes, reg)
	}

	return
}
