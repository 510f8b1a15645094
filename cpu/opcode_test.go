// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Fields(t *testing.T) {
	assert := assert.New(t)

	code := MakeCode(OP_LDR, 3, REG_SP, 0xfffc)
	assert.Equal(OP_LDR, code.Op())
	assert.Equal(3, code.Rd())
	assert.Equal(REG_SP, code.Rn())
	assert.Equal(uint16(0xfffc), code.Imm())
	assert.Equal(int32(-4), code.SImm())

	code = MakeCodeBranch(OP_BNE, -3)
	assert.Equal(OP_BNE, code.Op())
	assert.Equal(int32(-3), code.Offset())

	code = MakeCodeBranch(OP_B, 0x7fffff)
	assert.Equal(int32(0x7fffff), code.Offset())

	code = MakeCodeSvc(1)
	assert.Equal(OP_SVC, code.Op())
	assert.Equal(uint32(1), code.Svc())
}

func TestCode_String(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{MakeCode(OP_NOP, 0, 0, 0), "nop"},
		{MakeCode(OP_MOV, 1, 0, 0x41), "mov r1, #0x41"},
		{MakeCode(OP_MOVR, 0, REG_PC, 0), "mov r0, pc"},
		{MakeCode(OP_ADD, 2, 3, 1), "add r2, r3, #0x1"},
		{MakeCode(OP_SUBR, 2, 3, 4), "sub r2, r3, r4"},
		{MakeCode(OP_CMP, 0, 5, 9), "cmp r5, #0x9"},
		{MakeCode(OP_STR, 0, REG_SP, 0xfffc), "str r0, [sp, #-4]"},
		{MakeCode(OP_PUSH, REG_LR, 0, 0), "push lr"},
		{MakeCode(OP_BX, 0, REG_LR, 0), "bx lr"},
		{MakeCodeBranch(OP_BL, -2), "bl -2"},
		{MakeCodeSvc(0), "svc #0"},
		{Code(0xff000000), ".word 0xff000000"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.code.String())
	}
}
