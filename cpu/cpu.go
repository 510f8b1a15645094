// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"CPSR_MODE_USR": fmt.Sprintf("0x%x", CPSR_MODE_USR),
	"CPSR_MODE_SVC": fmt.Sprintf("0x%x", CPSR_MODE_SVC),
	"CPSR_I":        fmt.Sprintf("0x%x", CPSR_I),
	"CPSR_F":        fmt.Sprintf("0x%x", CPSR_F),
	"CPSR_USR_IRQ":  fmt.Sprintf("0x%x", CPSR_USR_IRQ),
}

// Bus is the memory the CPU fetches instructions from and loads and stores to.
type Bus interface {
	Read8(addr uint32) (value uint8, err error)
	Write8(addr uint32, value uint8) (err error)
	Read32(addr uint32) (value uint32, err error)
	Write32(addr uint32, value uint32) (err error)
}

// Cpu is the simulation context for the user-mode processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Context // Live register state.

	Bus        Bus  // Instruction and data memory.
	Interrupts bool // IRQs enabled at the processor, independent of CPSR_I.

	Ticks int // Instructions executed.
}

// NewCpu creates a new CPU attached to a memory bus.
func NewCpu(bus Bus) (cpu *Cpu) {
	cpu = &Cpu{
		Bus: bus,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers.
// - Enters supervisor mode with IRQs masked.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Context = Context{
		Cpsr: CPSR_MODE_SVC | CPSR_I | CPSR_F,
	}
	cpu.Interrupts = false
	cpu.Ticks = 0
}

// EnableIrq enables interrupts at the processor.
func (cpu *Cpu) EnableIrq() {
	cpu.Interrupts = true
}

// DisableIrq disables interrupts at the processor.
func (cpu *Cpu) DisableIrq() {
	cpu.Interrupts = false
}

// IrqEnabled returns true if a pending IRQ would be taken before the next
// instruction.
func (cpu *Cpu) IrqEnabled() bool {
	return cpu.Interrupts && (cpu.Cpsr&CPSR_I) == 0
}

// Step fetches and executes a single instruction.
func (cpu *Cpu) Step() (trap Trap, err error) {
	if (cpu.Pc & 3) != 0 {
		err = ErrPcAlign
		return
	}

	word, err := cpu.Bus.Read32(cpu.Pc)
	if err != nil {
		err = errors.Join(ErrFetch, err)
		return
	}

	trap, err = cpu.Execute(Code(word))
	return
}

// Execute executes a single decoded instruction.
//
// The program counter is advanced past the instruction before Execute returns,
// including when the instruction is an svc; the returned trap then carries the
// call identifier.
func (cpu *Cpu) Execute(code Code) (trap Trap, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("cpu: %08x: %v", cpu.Pc, code)
	}

	ctx := &cpu.Context

	next_pc := ctx.Pc + 4
	link_pc := next_pc

	// Reads of pc yield the address of the following instruction,
	// and writes to pc are branches.
	get := func(n int) uint32 {
		if n == REG_PC {
			return link_pc
		}
		return ctx.Reg(n)
	}
	set := func(n int, value uint32) {
		if n == REG_PC {
			next_pc = value
		} else {
			ctx.SetReg(n, value)
		}
	}

	op := code.Op()
	rd := code.Rd()
	rn := code.Rn()

	switch op {
	case OP_NOP:
		// pass
	case OP_MOV:
		set(rd, uint32(code.Imm()))
	case OP_MOVT:
		set(rd, (get(rd)&0xffff)|(uint32(code.Imm())<<16))
	case OP_MOVR:
		set(rd, get(rn))
	case OP_ADD:
		set(rd, get(rn)+uint32(code.Imm()))
	case OP_ADDR:
		set(rd, get(rn)+get(code.Rm()))
	case OP_SUB:
		set(rd, get(rn)-uint32(code.Imm()))
	case OP_SUBR:
		set(rd, get(rn)-get(code.Rm()))
	case OP_CMP:
		cpu.compare(get(rn), uint32(code.Imm()))
	case OP_CMPR:
		cpu.compare(get(rn), get(code.Rm()))
	case OP_LDR:
		var value uint32
		value, err = cpu.Bus.Read32(get(rn) + uint32(code.SImm()))
		if err != nil {
			err = errors.Join(ErrLoad, err)
			return
		}
		set(rd, value)
	case OP_STR:
		err = cpu.Bus.Write32(get(rn)+uint32(code.SImm()), get(rd))
		if err != nil {
			err = errors.Join(ErrStore, err)
			return
		}
	case OP_LDRB:
		var value uint8
		value, err = cpu.Bus.Read8(get(rn) + uint32(code.SImm()))
		if err != nil {
			err = errors.Join(ErrLoad, err)
			return
		}
		set(rd, uint32(value))
	case OP_STRB:
		err = cpu.Bus.Write8(get(rn)+uint32(code.SImm()), uint8(get(rd)))
		if err != nil {
			err = errors.Join(ErrStore, err)
			return
		}
	case OP_PUSH:
		sp := ctx.Sp - 4
		err = cpu.Bus.Write32(sp, get(rd))
		if err != nil {
			err = errors.Join(ErrStack, err)
			return
		}
		ctx.Sp = sp
	case OP_POP:
		var value uint32
		value, err = cpu.Bus.Read32(ctx.Sp)
		if err != nil {
			err = errors.Join(ErrStack, err)
			return
		}
		ctx.Sp += 4
		set(rd, value)
	case OP_B, OP_BEQ, OP_BNE, OP_BLT, OP_BGE:
		if cpu.taken(op) {
			next_pc = link_pc + uint32(code.Offset()*4)
		}
	case OP_BL:
		ctx.Lr = link_pc
		next_pc = link_pc + uint32(code.Offset()*4)
	case OP_BX:
		next_pc = get(rn)
	case OP_SVC:
		trap = Trap{Kind: TRAP_SVC, Id: code.Svc()}
	default:
		err = ErrOpcodeInvalid
		return
	}

	ctx.Pc = next_pc
	cpu.Ticks++

	return
}

// compare sets the condition flags from a - b.
func (cpu *Cpu) compare(a uint32, b uint32) {
	cpu.Cpsr &^= CPSR_N | CPSR_Z
	if a == b {
		cpu.Cpsr |= CPSR_Z
	}
	if int32(a) < int32(b) {
		cpu.Cpsr |= CPSR_N
	}
}

// taken returns true if a conditional branch is taken.
func (cpu *Cpu) taken(op CodeOp) (ok bool) {
	z := (cpu.Cpsr & CPSR_Z) != 0
	n := (cpu.Cpsr & CPSR_N) != 0

	switch op {
	case OP_B:
		ok = true
	case OP_BEQ:
		ok = z
	case OP_BNE:
		ok = !z
	case OP_BLT:
		ok = n
	case OP_BGE:
		ok = !n
	}

	return
}
