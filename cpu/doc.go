// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package cpu implements the user-mode processor and assembler for the μKern machine.
//
// The processor is a 32-bit little-endian load/store machine with thirteen
// general-purpose registers (r0-r12), a stack pointer, a link register, a program
// counter and a status word (CPSR). The complete register state is a Context, which
// is also the record handed to the kernel on every trap.
//
// The assembler provides a small assembly language for user programs, supporting
// macros, labels, equates, data directives and compile-time expression evaluation.
package cpu
