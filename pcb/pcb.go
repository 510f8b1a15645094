// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package pcb holds the process control blocks of the kernel.
package pcb

import (
	"fmt"

	"github.com/ezrec/ukern/cpu"
)

// Pcb is the control block of one process.
type Pcb struct {
	Pid    uint32      // Process identifier.
	Status Status      // Scheduling state.
	Ctx    cpu.Context // Saved registers, valid while not executing.
}

// Save copies the trap context into the control block.
func (pcb *Pcb) Save(ctx *cpu.Context) {
	pcb.Ctx = *ctx
}

// Restore copies the saved context back into the trap context.
func (pcb *Pcb) Restore(ctx *cpu.Context) {
	*ctx = pcb.Ctx
}

func (pcb *Pcb) String() string {
	return fmt.Sprintf("pid %d %v pc %08x sp %08x", pcb.Pid, pcb.Status, pcb.Ctx.Pc, pcb.Ctx.Sp)
}
