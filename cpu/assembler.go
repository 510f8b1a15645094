// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
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
}

// Assembler is a single pass macro assembler for μKern user programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Origin  uint32   // Load address of the program.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]uint32   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]int{
	"r0": 0, "r1": 1, "r2": 2, "r3": 3, "r4": 4, "r5": 5, "r6": 6,
	"r7": 7, "r8": 8, "r9": 9, "r10": 10, "r11": 11, "r12": 12,
	"sp": REG_SP, "r13": REG_SP,
	"lr": REG_LR, "r14": REG_LR,
	"pc": REG_PC, "r15": REG_PC,
}

// register returns the register index of a word.
func (asm *Assembler) register(word string) (reg int, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// isRegister returns true if the word names a register.
func (asm *Assembler) isRegister(word string) (ok bool) {
	_, ok = regMap[strings.ToLower(word)]
	return
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	word = strings.TrimPrefix(word, "#")
	if len(word) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrOpcodeValueMissing
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	v64, err := strconv.ParseInt(word, 0, 34)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 <= 0xffffffff && v64 >= -int64(0x80000000) {
		if v64 < 0 {
			value = uint32(0xffffffff + (v64 + 1))
		} else {
			value = uint32(v64)
		}
	} else {
		err = ErrImmediateRange
		return
	}

	if invert {
		value = ^value
	}

	return
}

// imm16 returns a value that must fit in an unsigned 16-bit immediate.
func (asm *Assembler) imm16(word string) (imm uint16, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if value > 0xffff {
		err = ErrImmediateRange
		return
	}
	imm = uint16(value)
	return
}

// simm16 returns a value that must fit in a signed 16-bit immediate.
func (asm *Assembler) simm16(word string) (imm uint16, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if int32(value) > 0x7fff || int32(value) < -0x8000 {
		err = ErrImmediateRange
		return
	}
	imm = uint16(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(int64(value32))
	}
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
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// stripComment removes a ';' comment that is not inside a string.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, str string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Split off any string literal.
	if n := strings.IndexByte(line, '"'); n >= 0 {
		str, err = strconv.Unquote(strings.TrimSpace(line[n:]))
		if err != nil {
			err = ErrDirectiveSyntax
			return
		}
		line = line[:n]
	}

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
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
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	// Operand punctuation is only a separator.
	line = strings.NewReplacer(",", " ", "[", " ", "]", " ", "{", " ", "}", " ", "\t", " ").Replace(line)

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
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

	for n, word := range words {
		// Check for equate next, keeping any immediate or literal prefix.
		prefix := ""
		if word[0] == '#' || word[0] == '=' {
			prefix = word[:1]
			word = word[1:]
		}
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = prefix + equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique to each expansion.
		local := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			var mstr string
			words, mstr, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, mstr, macro.LineNo+n)
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

// currentPc gets the address of the next byte to be emitted.
func (asm *Assembler) currentPc() uint32 {
	if len(asm.Opcode) == 0 {
		return asm.Origin
	}

	last := &asm.Opcode[len(asm.Opcode)-1]

	return last.Pc + uint32(last.Size())
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

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
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

		if len(words) > 0 && words[0] == ".endm" {
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

		var str string
		words, str, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, str, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if op.Link == LINK_NONE {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		addr, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}

		switch op.Link {
		case LINK_BRANCH:
			linked := &op.Codes[len(op.Codes)-1]
			next := op.Pc + uint32(len(op.Codes)*4)
			offset := (int64(addr) - int64(next)) / 4
			if offset >= (1<<23) || offset < -(1<<23) {
				err = ErrBranchRange
				return
			}
			*linked |= Code(uint32(offset) & 0xffffff)
		case LINK_ABSOLUTE:
			op.Codes[0] |= Code(addr & 0xffff)
			op.Codes[1] |= Code(addr >> 16)
		case LINK_WORD:
			binary.LittleEndian.PutUint32(op.Data, addr)
		}
	}

	prog = &Program{
		Origin:  asm.Origin,
		Entry:   asm.Origin,
		Labels:  maps.Clone(asm.Label),
		Opcodes: slices.Clone(asm.Opcode),
	}

	if entry, ok := asm.Label["main"]; ok {
		prog.Entry = entry
	}

	if prog.Labels == nil {
		prog.Labels = map[string]uint32{}
	}

	return
}

// isLabel returns true if the word can only be a label reference.
func (asm *Assembler) isLabel(word string) bool {
	if asm.isRegister(word) {
		return false
	}
	_, err := asm.valueOf(word)
	return err != nil
}

// parseData evaluates a data directive.
func (asm *Assembler) parseData(words []string, str string, lineno int) (err error) {
	var data []byte
	var label string
	link := LINK_NONE

	defer func() {
		if err != nil || data == nil {
			return
		}
		opcode := Opcode{LineNo: lineno, Pc: asm.currentPc(), Words: words, Data: data, LinkLabel: label, Link: link}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	switch words[0] {
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) == 2 && asm.isLabel(words[1]) {
			data = make([]byte, 4)
			label = words[1]
			link = LINK_WORD
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			data = binary.LittleEndian.AppendUint32(data, value)
		}
	case ".byte":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if value > 0xff {
				err = ErrImmediateRange
				return
			}
			data = append(data, byte(value))
		}
	case ".ascii", ".asciz":
		if len(words) != 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		if len(str) == 0 && words[0] == ".ascii" {
			err = ErrStringMissing
			return
		}
		data = []byte(str)
		if words[0] == ".asciz" {
			data = append(data, 0)
		}
	case ".space":
		if len(words) != 2 {
			err = ErrDirectiveSyntax
			return
		}
		var size uint32
		size, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		data = make([]byte, size)
	case ".align":
		if len(words) != 2 {
			err = ErrDirectiveSyntax
			return
		}
		var align uint32
		align, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if align == 0 || (align&(align-1)) != 0 {
			err = ErrDirectiveSyntax
			return
		}
		pc := asm.currentPc()
		data = make([]byte, (align-(pc%align))%align)
	default:
		err = ErrDirectiveSyntax
	}

	return
}

// branchMap maps branch mnemonics.
var branchMap = map[string]CodeOp{
	"b":   OP_B,
	"beq": OP_BEQ,
	"bne": OP_BNE,
	"blt": OP_BLT,
	"bge": OP_BGE,
	"bl":  OP_BL,
}

// memoryMap maps load/store mnemonics.
var memoryMap = map[string]CodeOp{
	"ldr":  OP_LDR,
	"str":  OP_STR,
	"ldrb": OP_LDRB,
	"strb": OP_STRB,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, str string, lineno int) (err error) {
	var codes []Code
	var label string
	link := LINK_NONE

	// no-op
	if len(words) == 0 {
		return
	}

	if strings.HasPrefix(words[0], ".") {
		return asm.parseData(words, str, lineno)
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		// Instructions are word aligned, and so are the labels that
		// name them.
		if pad := asm.currentPc() % 4; pad != 0 {
			pc := asm.currentPc()
			asm.Opcode = append(asm.Opcode, Opcode{LineNo: lineno, Pc: pc, Data: make([]byte, 4-pad)})
			for name, addr := range asm.Label {
				if addr == pc {
					asm.Label[name] = asm.currentPc()
				}
			}
		}
		opcode := Opcode{LineNo: lineno, Pc: asm.currentPc(), Words: initial_words, Codes: codes, LinkLabel: label, Link: link}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	// Alternate syntax substitutions
	switch {
	case mnemonic == "ret" && len(args) == 0:
		// ret => bx lr
		mnemonic = "bx"
		args = []string{"lr"}
	case (mnemonic == "add" || mnemonic == "sub") && len(args) == 2:
		// add rd, x => add rd, rd, x
		args = []string{args[0], args[0], args[1]}
	default:
		// unchanged
	}

	if op, ok := branchMap[mnemonic]; ok {
		if len(args) < 1 {
			err = ErrOpcodeMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		codes = append(codes, MakeCodeBranch(op, 0))
		label = args[0]
		link = LINK_BRANCH
		return
	}

	if op, ok := memoryMap[mnemonic]; ok {
		if len(args) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var rd, rn int
		rd, err = asm.register(args[0])
		if err != nil {
			return
		}
		// ldr rd, =value
		if strings.HasPrefix(args[1], "=") {
			if op != OP_LDR || len(args) > 2 {
				err = ErrInstructionInvalid
				return
			}
			literal := args[1][1:]
			var value uint32
			if asm.isLabel(literal) {
				label = literal
				link = LINK_ABSOLUTE
			} else {
				value, err = asm.valueOf(literal)
				if err != nil {
					return
				}
			}
			codes = append(codes,
				MakeCode(OP_MOV, rd, 0, uint16(value&0xffff)),
				MakeCode(OP_MOVT, rd, 0, uint16(value>>16)),
			)
			return
		}
		if len(args) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		rn, err = asm.register(args[1])
		if err != nil {
			return
		}
		var imm uint16
		if len(args) == 3 {
			imm, err = asm.simm16(args[2])
			if err != nil {
				return
			}
		}
		codes = append(codes, MakeCode(op, rd, rn, imm))
		return
	}

	switch mnemonic {
	case "nop":
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		codes = append(codes, MakeCode(OP_NOP, 0, 0, 0))
	case "mov", "movt":
		if len(args) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var rd int
		rd, err = asm.register(args[0])
		if err != nil {
			return
		}
		if mnemonic == "mov" && asm.isRegister(args[1]) {
			var rn int
			rn, _ = asm.register(args[1])
			codes = append(codes, MakeCode(OP_MOVR, rd, rn, 0))
			return
		}
		var imm uint16
		imm, err = asm.imm16(args[1])
		if err != nil {
			return
		}
		op := OP_MOV
		if mnemonic == "movt" {
			op = OP_MOVT
		}
		codes = append(codes, MakeCode(op, rd, 0, imm))
	case "add", "sub":
		if len(args) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var rd, rn int
		rd, err = asm.register(args[0])
		if err != nil {
			return
		}
		rn, err = asm.register(args[1])
		if err != nil {
			return
		}
		op_imm, op_reg := OP_ADD, OP_ADDR
		if mnemonic == "sub" {
			op_imm, op_reg = OP_SUB, OP_SUBR
		}
		if asm.isRegister(args[2]) {
			var rm int
			rm, _ = asm.register(args[2])
			codes = append(codes, MakeCode(op_reg, rd, rn, uint16(rm)))
			return
		}
		var value uint32
		value, err = asm.valueOf(args[2])
		if err != nil {
			return
		}
		// Negative immediates swap add and sub.
		if value > 0xffff && -value <= 0xffff {
			value = -value
			if op_imm == OP_ADD {
				op_imm = OP_SUB
			} else {
				op_imm = OP_ADD
			}
		}
		if value > 0xffff {
			err = ErrImmediateRange
			return
		}
		codes = append(codes, MakeCode(op_imm, rd, rn, uint16(value)))
	case "cmp":
		if len(args) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var rn int
		rn, err = asm.register(args[0])
		if err != nil {
			return
		}
		if asm.isRegister(args[1]) {
			var rm int
			rm, _ = asm.register(args[1])
			codes = append(codes, MakeCode(OP_CMPR, 0, rn, uint16(rm)))
			return
		}
		var imm uint16
		imm, err = asm.imm16(args[1])
		if err != nil {
			return
		}
		codes = append(codes, MakeCode(OP_CMP, 0, rn, imm))
	case "push", "pop":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		var regs []int
		for _, arg := range args {
			var reg int
			reg, err = asm.register(arg)
			if err != nil {
				return
			}
			regs = append(regs, reg)
		}
		// push stores the last register first, so pop of the same
		// list restores them in order.
		if mnemonic == "push" {
			slices.Reverse(regs)
			for _, reg := range regs {
				codes = append(codes, MakeCode(OP_PUSH, reg, 0, 0))
			}
		} else {
			for _, reg := range regs {
				codes = append(codes, MakeCode(OP_POP, reg, 0, 0))
			}
		}
	case "bx":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var rn int
		rn, err = asm.register(args[0])
		if err != nil {
			return
		}
		codes = append(codes, MakeCode(OP_BX, 0, rn, 0))
	case "svc":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var id uint32
		id, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if id > 0xffffff {
			err = ErrImmediateRange
			return
		}
		codes = append(codes, MakeCodeSvc(id))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
