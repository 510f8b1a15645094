// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler_Codes(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line  string
		codes []Code
	}){
		{"nop", []Code{MakeCode(OP_NOP, 0, 0, 0)}},
		{"mov r0, #1", []Code{MakeCode(OP_MOV, 0, 0, 1)}},
		{"mov r1, r2", []Code{MakeCode(OP_MOVR, 1, 2, 0)}},
		{"movt r3, #0x1234", []Code{MakeCode(OP_MOVT, 3, 0, 0x1234)}},
		{"mov r0, #'A'", []Code{MakeCode(OP_MOV, 0, 0, 'A')}},
		{"mov r0, #'\\n'", []Code{MakeCode(OP_MOV, 0, 0, '\n')}},
		{"add r1, r2, #3", []Code{MakeCode(OP_ADD, 1, 2, 3)}},
		{"add r1, #3", []Code{MakeCode(OP_ADD, 1, 1, 3)}},
		{"add r1, r2, r3", []Code{MakeCode(OP_ADDR, 1, 2, 3)}},
		{"add sp, #-8", []Code{MakeCode(OP_SUB, REG_SP, REG_SP, 8)}},
		{"sub r4, r4, #1", []Code{MakeCode(OP_SUB, 4, 4, 1)}},
		{"sub r4, r5", []Code{MakeCode(OP_SUBR, 4, 4, 5)}},
		{"cmp r0, #10", []Code{MakeCode(OP_CMP, 0, 0, 10)}},
		{"cmp r0, r1", []Code{MakeCode(OP_CMPR, 0, 0, 1)}},
		{"ldr r0, [sp]", []Code{MakeCode(OP_LDR, 0, REG_SP, 0)}},
		{"ldr r0, [sp, #-4]", []Code{MakeCode(OP_LDR, 0, REG_SP, 0xfffc)}},
		{"strb r1, [r2, #3]", []Code{MakeCode(OP_STRB, 1, 2, 3)}},
		{"ldr r0, =0x12345678", []Code{MakeCode(OP_MOV, 0, 0, 0x5678), MakeCode(OP_MOVT, 0, 0, 0x1234)}},
		{"push {r4, lr}", []Code{MakeCode(OP_PUSH, REG_LR, 0, 0), MakeCode(OP_PUSH, 4, 0, 0)}},
		{"pop {r4, lr}", []Code{MakeCode(OP_POP, 4, 0, 0), MakeCode(OP_POP, REG_LR, 0, 0)}},
		{"bx r3", []Code{MakeCode(OP_BX, 0, 3, 0)}},
		{"ret", []Code{MakeCode(OP_BX, 0, REG_LR, 0)}},
		{"svc #1", []Code{MakeCodeSvc(1)}},
		{"svc $(2*3)", []Code{MakeCodeSvc(6)}},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.line))
		if !assert.NoError(err, entry.line) {
			continue
		}
		if !assert.Equal(1, len(prog.Opcodes), entry.line) {
			continue
		}
		assert.Equal(entry.codes, prog.Opcodes[0].Codes, entry.line)
	}
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		err    error
	}){
		{"mov r0, #0x10000", ErrImmediateRange},
		{"mov r16, #0", ErrRegisterInvalid},
		{"ldr r0, [sp, #0x8000]", ErrImmediateRange},
		{"str r0, =4", ErrInstructionInvalid},
		{"frob r0", ErrInstructionInvalid},
		{"nop r0", ErrOpcodeExtraArgs},
		{"b", ErrOpcodeMissing},
		{"b nowhere", ErrLabelMissing("nowhere")},
		{"here:\nhere:", ErrLabelDuplicate},
		{".equ X 1\n.equ X 2", ErrEquateDuplicate},
		{".equ X", ErrEquateSyntax},
		{".macro m\n.macro n", ErrMacroNesting},
		{".macro m", ErrMacroLonely},
		{".endm", ErrMacroLonelyEndm},
		{".ascii", ErrStringMissing},
		{".align 3", ErrDirectiveSyntax},
		{".frob", ErrDirectiveSyntax},
		{".byte 256", ErrImmediateRange},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		assert.ErrorIs(err, entry.err, entry.source)
	}
}

func TestAssembler_SyntaxLine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("nop\nnop\n  mov r0, #0x10000 ; too big\n"))

	var syntax *ErrSyntax
	if assert.ErrorAs(err, &syntax) {
		assert.Equal(3, syntax.LineNo)
		assert.Equal("mov r0, #0x10000", syntax.Line)
	}
}

func TestAssembler_Program(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Origin: 0x8000}
	asm.Predefine("SYS_WRITE", "1")
	asm.Predefine("FD_CONSOLE", "0")

	prog, err := asm.Parse(strings.NewReader(`
.equ LEN 2
msg:	.asciz "hi; there"	; comment
main:
	mov r0, #FD_CONSOLE
	ldr r1, =msg
	mov r2, #$(LEN*2)
	svc #SYS_WRITE
loop:
	b loop
table:
	.word main
`))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(uint32(0x8000), prog.Labels["msg"])
	assert.Equal(uint32(0x800c), prog.Labels["main"])
	assert.Equal(prog.Labels["main"], prog.Entry)

	image := prog.Image()
	assert.Equal(int(prog.Size()), len(image))
	assert.Equal("hi; there\x00", string(image[:10]))

	var codes []Code
	for pc, code := range prog.Codes() {
		if pc >= prog.Labels["main"] {
			codes = append(codes, code)
		}
	}
	assert.Equal([]Code{
		MakeCode(OP_MOV, 0, 0, 0),
		MakeCode(OP_MOV, 1, 0, 0x8000),
		MakeCode(OP_MOVT, 1, 0, 0),
		MakeCode(OP_MOV, 2, 0, 4),
		MakeCodeSvc(1),
		MakeCodeBranch(OP_B, -1),
	}, codes)

	table := prog.Labels["table"] - prog.Origin
	assert.Equal([]byte{0x0c, 0x80, 0, 0}, image[table:table+4])

	dbg := prog.Debug(prog.Labels["main"] + 8)
	if assert.NotNil(dbg.Opcode) {
		assert.Equal(1, dbg.Index)
		assert.Equal([]string{"ldr", "r1", "=msg"}, dbg.Words)
	}

	dbg = prog.Debug(prog.Labels["msg"])
	assert.Nil(dbg.Opcode)
}

func TestAssembler_Macro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(`
.macro spin reg count
	mov reg, #count
@loop:
	sub reg, #1
	cmp reg, #0
	bne @loop
.endm
	spin r3 4
	spin r4 5
`))
	if !assert.NoError(err) {
		return
	}

	var codes []Code
	for _, code := range prog.Codes() {
		codes = append(codes, code)
	}
	assert.Equal(8, len(codes))
	assert.Equal(MakeCode(OP_MOV, 3, 0, 4), codes[0])
	assert.Equal(MakeCodeBranch(OP_BNE, -3), codes[3])
	assert.Equal(MakeCode(OP_MOV, 4, 0, 5), codes[4])
	assert.Equal(MakeCode(OP_SUB, 4, 4, 1), codes[5])
}
