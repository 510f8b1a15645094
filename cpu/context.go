// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
)

// Register indexes for Context.Reg and Context.SetReg.
const (
	REG_SP    = 13 // Stack pointer.
	REG_LR    = 14 // Link register.
	REG_PC    = 15 // Program counter.
	REG_COUNT = 16 // Number of addressable registers.
)

// Context is the register state of one process at a trap boundary.
//
// The field order is the order the trap entry sequence stores the registers in,
// and the order the trap exit sequence reloads them from.
type Context struct {
	Cpsr uint32     // Processor status word.
	Pc   uint32     // Program counter.
	Gpr  [13]uint32 // General-purpose registers r0-r12.
	Sp   uint32     // Stack pointer.
	Lr   uint32     // Link register.
}

// Reg returns register n, where 0-12 are r0-r12, 13 is sp, 14 is lr and 15 is pc.
func (ctx *Context) Reg(n int) (value uint32) {
	switch {
	case n >= 0 && n < len(ctx.Gpr):
		value = ctx.Gpr[n]
	case n == REG_SP:
		value = ctx.Sp
	case n == REG_LR:
		value = ctx.Lr
	case n == REG_PC:
		value = ctx.Pc
	default:
		panic(fmt.Sprintf("register %d out of range", n))
	}

	return
}

// SetReg sets register n, using the same numbering as Reg.
func (ctx *Context) SetReg(n int, value uint32) {
	switch {
	case n >= 0 && n < len(ctx.Gpr):
		ctx.Gpr[n] = value
	case n == REG_SP:
		ctx.Sp = value
	case n == REG_LR:
		ctx.Lr = value
	case n == REG_PC:
		ctx.Pc = value
	default:
		panic(fmt.Sprintf("register %d out of range", n))
	}
}

// RegName returns the assembler name of register n.
func RegName(n int) string {
	switch n {
	case REG_SP:
		return "sp"
	case REG_LR:
		return "lr"
	case REG_PC:
		return "pc"
	}
	return fmt.Sprintf("r%d", n)
}

// String returns the register state as a string.
func (ctx *Context) String() (text string) {
	text += fmt.Sprintf("% 5s: %04X_%04X\n", "cpsr", ctx.Cpsr>>16, ctx.Cpsr&0xffff)
	text += fmt.Sprintf("% 5s: %04X_%04X\n", "pc", ctx.Pc>>16, ctx.Pc&0xffff)
	for n, val := range ctx.Gpr {
		text += fmt.Sprintf("% 5s: %04X_%04X\n", RegName(n), val>>16, val&0xffff)
	}
	text += fmt.Sprintf("% 5s: %04X_%04X\n", "sp", ctx.Sp>>16, ctx.Sp&0xffff)
	text += fmt.Sprintf("% 5s: %04X_%04X\n", "lr", ctx.Lr>>16, ctx.Lr&0xffff)

	return
}
