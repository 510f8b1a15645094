// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

// Processor status word (CPSR) fields.
const (
	CPSR_MODE_MASK = uint32(0x1f) // Mask of the processor mode.
	CPSR_MODE_USR  = uint32(0x10) // User mode.
	CPSR_MODE_IRQ  = uint32(0x12) // Interrupt mode.
	CPSR_MODE_SVC  = uint32(0x13) // Supervisor mode.

	CPSR_F = uint32(1 << 6)  // FIQ masked.
	CPSR_I = uint32(1 << 7)  // IRQ masked.
	CPSR_Z = uint32(1 << 30) // Last compare was equal.
	CPSR_N = uint32(1 << 31) // Last compare was signed less-than.

	// User mode with IRQ enabled, FIQ masked.
	CPSR_USR_IRQ = CPSR_MODE_USR | CPSR_F
)
