// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
)

// CodeOp is an instruction operation.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_NOP  = CodeOp(0x00) // nop
	OP_MOV  = CodeOp(0x01) // mov
	OP_MOVT = CodeOp(0x02) // movt
	OP_MOVR = CodeOp(0x03) // mov
	OP_ADD  = CodeOp(0x04) // add
	OP_ADDR = CodeOp(0x05) // add
	OP_SUB  = CodeOp(0x06) // sub
	OP_SUBR = CodeOp(0x07) // sub
	OP_CMP  = CodeOp(0x08) // cmp
	OP_CMPR = CodeOp(0x09) // cmp
	OP_LDR  = CodeOp(0x0a) // ldr
	OP_STR  = CodeOp(0x0b) // str
	OP_LDRB = CodeOp(0x0c) // ldrb
	OP_STRB = CodeOp(0x0d) // strb
	OP_PUSH = CodeOp(0x0e) // push
	OP_POP  = CodeOp(0x0f) // pop
	OP_B    = CodeOp(0x10) // b
	OP_BEQ  = CodeOp(0x11) // beq
	OP_BNE  = CodeOp(0x12) // bne
	OP_BLT  = CodeOp(0x13) // blt
	OP_BGE  = CodeOp(0x14) // bge
	OP_BL   = CodeOp(0x15) // bl
	OP_BX   = CodeOp(0x16) // bx
	OP_SVC  = CodeOp(0x20) // svc
)

// CodeForm is the operand layout of an instruction.
type CodeForm int

const (
	FORM_NONE   = CodeForm(0) // No operands.
	FORM_RD_IMM = CodeForm(1) // rd, #imm16
	FORM_RD_RN  = CodeForm(2) // rd, rn
	FORM_RRI    = CodeForm(3) // rd, rn, #imm16
	FORM_RRR    = CodeForm(4) // rd, rn, rm
	FORM_RN_IMM = CodeForm(5) // rn, #imm16
	FORM_RN_RM  = CodeForm(6) // rn, rm
	FORM_MEM    = CodeForm(7) // rd, [rn, #simm16]
	FORM_RD     = CodeForm(8) // rd
	FORM_RN     = CodeForm(9) // rn
	FORM_BRANCH = CodeForm(10)
	FORM_SVC    = CodeForm(11)
)

var opForm = map[CodeOp]CodeForm{
	OP_NOP:  FORM_NONE,
	OP_MOV:  FORM_RD_IMM,
	OP_MOVT: FORM_RD_IMM,
	OP_MOVR: FORM_RD_RN,
	OP_ADD:  FORM_RRI,
	OP_ADDR: FORM_RRR,
	OP_SUB:  FORM_RRI,
	OP_SUBR: FORM_RRR,
	OP_CMP:  FORM_RN_IMM,
	OP_CMPR: FORM_RN_RM,
	OP_LDR:  FORM_MEM,
	OP_STR:  FORM_MEM,
	OP_LDRB: FORM_MEM,
	OP_STRB: FORM_MEM,
	OP_PUSH: FORM_RD,
	OP_POP:  FORM_RD,
	OP_B:    FORM_BRANCH,
	OP_BEQ:  FORM_BRANCH,
	OP_BNE:  FORM_BRANCH,
	OP_BLT:  FORM_BRANCH,
	OP_BGE:  FORM_BRANCH,
	OP_BL:   FORM_BRANCH,
	OP_BX:   FORM_RN,
	OP_SVC:  FORM_SVC,
}

// Form returns the operand layout of the operation.
func (op CodeOp) Form() (form CodeForm, ok bool) {
	form, ok = opForm[op]
	return
}

// Code is a single 32-bit instruction word.
//
//	op[31:24] rd[23:20] rn[19:16] imm16[15:0]
//
// Branches carry a signed word offset, and svc an unsigned call identifier,
// in the low 24 bits.
type Code uint32

// MakeCode encodes a register/immediate form instruction.
func MakeCode(op CodeOp, rd int, rn int, imm uint16) Code {
	return Code(uint32(op)<<24 | uint32(rd&0xf)<<20 | uint32(rn&0xf)<<16 | uint32(imm))
}

// MakeCodeBranch encodes a branch by a signed offset in words, relative to the
// following instruction.
func MakeCodeBranch(op CodeOp, offset int32) Code {
	return Code(uint32(op)<<24 | uint32(offset)&0xffffff)
}

// MakeCodeSvc encodes a system call trap.
func MakeCodeSvc(id uint32) Code {
	return Code(uint32(OP_SVC)<<24 | id&0xffffff)
}

// Op returns the operation.
func (code Code) Op() CodeOp {
	return CodeOp(code >> 24)
}

// Rd returns the destination register.
func (code Code) Rd() int {
	return int(code>>20) & 0xf
}

// Rn returns the first source register.
func (code Code) Rn() int {
	return int(code>>16) & 0xf
}

// Rm returns the second source register of a register-register form.
func (code Code) Rm() int {
	return int(code) & 0xf
}

// Imm returns the unsigned 16-bit immediate.
func (code Code) Imm() uint16 {
	return uint16(code)
}

// SImm returns the sign-extended 16-bit immediate.
func (code Code) SImm() int32 {
	return int32(int16(code))
}

// Offset returns the sign-extended branch offset, in words.
func (code Code) Offset() int32 {
	return int32(uint32(code)<<8) >> 8
}

// Svc returns the system call identifier.
func (code Code) Svc() uint32 {
	return uint32(code) & 0xffffff
}

// String disassembles the instruction.
func (code Code) String() (text string) {
	op := code.Op()
	form, ok := op.Form()
	if !ok {
		return fmt.Sprintf(".word 0x%08x", uint32(code))
	}

	rd := RegName(code.Rd())
	rn := RegName(code.Rn())

	switch form {
	case FORM_NONE:
		text = op.String()
	case FORM_RD_IMM:
		text = fmt.Sprintf("%v %v, #0x%x", op, rd, code.Imm())
	case FORM_RD_RN:
		text = fmt.Sprintf("%v %v, %v", op, rd, rn)
	case FORM_RRI:
		text = fmt.Sprintf("%v %v, %v, #0x%x", op, rd, rn, code.Imm())
	case FORM_RRR:
		text = fmt.Sprintf("%v %v, %v, %v", op, rd, rn, RegName(code.Rm()))
	case FORM_RN_IMM:
		text = fmt.Sprintf("%v %v, #0x%x", op, rn, code.Imm())
	case FORM_RN_RM:
		text = fmt.Sprintf("%v %v, %v", op, rn, RegName(code.Rm()))
	case FORM_MEM:
		text = fmt.Sprintf("%v %v, [%v, #%d]", op, rd, rn, code.SImm())
	case FORM_RD:
		text = fmt.Sprintf("%v %v", op, rd)
	case FORM_RN:
		text = fmt.Sprintf("%v %v", op, rn)
	case FORM_BRANCH:
		text = fmt.Sprintf("%v %+d", op, code.Offset())
	case FORM_SVC:
		text = fmt.Sprintf("%v #%d", op, code.Svc())
	}

	return
}
