// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package pcb

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/ukern/cpu"
)

// Table is the fixed-capacity process table.
//
// While user code runs exactly one slot is STATUS_EXECUTING, and Executing
// is its index.
type Table struct {
	Executing int // Index of the executing slot.

	slots []Pcb
}

// NewTable creates a table of capacity invalid slots.
func NewTable(capacity int) (table *Table) {
	table = &Table{
		slots: make([]Pcb, capacity),
	}
	return
}

// Capacity returns the number of slots.
func (table *Table) Capacity() int {
	return len(table.slots)
}

// Slot returns the control block of a slot, or nil if out of range.
func (table *Table) Slot(slot int) *Pcb {
	if slot < 0 || slot >= len(table.slots) {
		return nil
	}
	return &table.slots[slot]
}

// Current returns the control block of the executing slot.
func (table *Table) Current() *Pcb {
	return table.Slot(table.Executing)
}

// All iterates over every slot.
func (table *Table) All() iter.Seq2[int, *Pcb] {
	return func(yield func(int, *Pcb) bool) {
		for n := range table.slots {
			if !yield(n, &table.slots[n]) {
				return
			}
		}
	}
}

// InitSlot prepares a slot to enter user mode at entry with the stack at
// stackTop. Only used during boot.
func (table *Table) InitSlot(slot int, pid uint32, entry uint32, stackTop uint32) (err error) {
	pcb := table.Slot(slot)
	if pcb == nil {
		err = &ErrSlot{Slot: slot, Err: ErrSlotInvalid}
		return
	}

	*pcb = Pcb{
		Pid:    pid,
		Status: STATUS_READY,
	}
	pcb.Ctx.Pc = entry
	pcb.Ctx.Sp = stackTop
	pcb.Ctx.Cpsr = cpu.CPSR_USR_IRQ

	return
}

// SetStatus changes the state of a non-executing slot. A slot can only enter
// or leave the executing state through the scheduler.
func (table *Table) SetStatus(slot int, status Status) (err error) {
	pcb := table.Slot(slot)
	if pcb == nil {
		err = &ErrSlot{Slot: slot, Err: ErrSlotInvalid}
		return
	}

	if pcb.Status == STATUS_EXECUTING || status == STATUS_EXECUTING || status == STATUS_INVALID || status > STATUS_TERMINATED {
		err = &ErrSlot{Slot: slot, Err: ErrStatusInvalid}
		return
	}

	pcb.Status = status
	return
}

// Check verifies that exactly one slot is executing, and that it is the
// slot at Executing.
func (table *Table) Check() (err error) {
	count := 0
	executing := -1
	for n, pcb := range table.All() {
		if pcb.Status == STATUS_EXECUTING {
			count++
			executing = n
		}
	}

	switch {
	case count == 0:
		err = ErrNoExecuting
	case count > 1:
		err = ErrMultipleExecuting
	case executing != table.Executing:
		err = &ErrSlot{Slot: executing, Err: ErrExecutingIndex}
	}

	return
}

// String renders the table, one slot per line, marking the executing slot.
func (table *Table) String() string {
	var text strings.Builder
	for n, pcb := range table.All() {
		mark := " "
		if n == table.Executing {
			mark = "*"
		}
		fmt.Fprintf(&text, "%s%2d: %v\n", mark, n, pcb)
	}
	return text.String()
}
