// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package sched selects which process runs next.
//
// Selection is round-robin over the process table: starting after the
// executing slot, the first READY slot wins. When no other slot is ready
// the current process continues, even if it had blocked or terminated, so
// that exactly one process is always executing. The OnIdle hook sees that
// case and may stop the machine.
package sched

import (
	"log"

	"github.com/ezrec/ukern/cpu"
	"github.com/ezrec/ukern/pcb"
)

// Scheduler is a round-robin scheduler over a process table.
type Scheduler struct {
	Verbose bool // If set, logs every selection.

	Table *pcb.Table // Process table, owned by the kernel.

	// OnIdle, if set, is called with the executing slot and the status it
	// had when no slot at all is runnable. That process is continued.
	OnIdle func(slot int, status pcb.Status)

	Calls    int // Number of reschedules.
	Switches int // Reschedules that changed the executing process.
	Idles    int // Reschedules that found nothing runnable.
}

// New creates a scheduler for a process table.
func New(table *pcb.Table) (sched *Scheduler) {
	sched = &Scheduler{
		Table: table,
	}
	return
}

// Reschedule saves the trap context into the executing process, selects the
// next process and restores its context into ctx. It must only be called
// from a trap handler, with interrupts masked.
func (sched *Scheduler) Reschedule(ctx *cpu.Context) (next int) {
	table := sched.Table

	cur := table.Executing
	next = cur

	current := table.Slot(cur)
	if current == nil {
		return
	}

	sched.Calls++

	current.Save(ctx)
	if current.Status == pcb.STATUS_EXECUTING {
		current.Status = pcb.STATUS_READY
	}

	found := false
	capacity := table.Capacity()
	for n := 1; n < capacity; n++ {
		slot := (cur + n) % capacity
		if table.Slot(slot).Status == pcb.STATUS_READY {
			next = slot
			found = true
			break
		}
	}

	if !found && current.Status != pcb.STATUS_READY {
		sched.Idles++
		if sched.Verbose {
			log.Printf("sched: idle, continuing slot %d (%v)", cur, current.Status)
		}
		if sched.OnIdle != nil {
			sched.OnIdle(cur, current.Status)
		}
	}

	selected := table.Slot(next)
	selected.Restore(ctx)
	selected.Status = pcb.STATUS_EXECUTING
	table.Executing = next

	if next != cur {
		sched.Switches++
	}

	if sched.Verbose {
		log.Printf("sched: slot %d -> %d (pid %d, pc %08x)", cur, next, selected.Pid, ctx.Pc)
	}

	return
}

// Suspend leaves the executing process in status, which must be READY,
// BLOCKED or TERMINATED, and reschedules. It must only be called from a
// trap handler, with interrupts masked.
func (sched *Scheduler) Suspend(ctx *cpu.Context, status pcb.Status) (next int, err error) {
	table := sched.Table

	next = table.Executing
	current := table.Slot(next)
	if current == nil {
		err = &pcb.ErrSlot{Slot: next, Err: pcb.ErrSlotInvalid}
		return
	}

	switch status {
	case pcb.STATUS_READY, pcb.STATUS_BLOCKED, pcb.STATUS_TERMINATED:
	default:
		err = &pcb.ErrSlot{Slot: next, Err: pcb.ErrStatusInvalid}
		return
	}

	current.Status = status
	next = sched.Reschedule(ctx)
	return
}
