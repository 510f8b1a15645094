// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package pcb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ukern/cpu"
)

func TestTable_InitSlot(t *testing.T) {
	assert := assert.New(t)

	table := NewTable(2)
	assert.Equal(2, table.Capacity())

	table.Slot(1).Ctx.Gpr[3] = 0x1234
	err := table.InitSlot(1, 7, 0x20000, 0x28000)
	assert.NoError(err)

	pcb := table.Slot(1)
	assert.Equal(uint32(7), pcb.Pid)
	assert.Equal(STATUS_READY, pcb.Status)
	assert.Equal(uint32(0x20000), pcb.Ctx.Pc)
	assert.Equal(uint32(0x28000), pcb.Ctx.Sp)
	assert.Equal(uint32(0x50), pcb.Ctx.Cpsr)
	assert.Equal(cpu.CPSR_MODE_USR, pcb.Ctx.Cpsr&cpu.CPSR_MODE_MASK)
	assert.Equal(uint32(0), pcb.Ctx.Gpr[3])

	err = table.InitSlot(2, 8, 0, 0)
	assert.ErrorIs(err, ErrSlotInvalid)
	err = table.InitSlot(-1, 8, 0, 0)
	assert.ErrorIs(err, ErrSlotInvalid)
	assert.Nil(table.Slot(2))
}

func TestTable_Check(t *testing.T) {
	assert := assert.New(t)

	table := NewTable(3)
	for n := range 3 {
		assert.NoError(table.InitSlot(n, uint32(n+1), 0, 0))
	}
	assert.ErrorIs(table.Check(), ErrNoExecuting)

	table.Slot(0).Status = STATUS_EXECUTING
	assert.NoError(table.Check())
	assert.Equal(uint32(1), table.Current().Pid)

	table.Executing = 2
	assert.ErrorIs(table.Check(), ErrExecutingIndex)

	table.Slot(2).Status = STATUS_EXECUTING
	assert.ErrorIs(table.Check(), ErrMultipleExecuting)
}

func TestTable_SetStatus(t *testing.T) {
	assert := assert.New(t)

	table := NewTable(2)
	assert.NoError(table.SetStatus(1, STATUS_BLOCKED))
	assert.Equal(STATUS_BLOCKED, table.Slot(1).Status)

	assert.ErrorIs(table.SetStatus(1, STATUS_EXECUTING), ErrStatusInvalid)
	assert.ErrorIs(table.SetStatus(1, STATUS_INVALID), ErrStatusInvalid)
	assert.ErrorIs(table.SetStatus(1, Status(42)), ErrStatusInvalid)
	assert.ErrorIs(table.SetStatus(5, STATUS_READY), ErrSlotInvalid)
	assert.Equal(STATUS_BLOCKED, table.Slot(1).Status)

	// The executing slot is left to the scheduler.
	assert.NoError(table.InitSlot(0, 1, 0x10000, 0x18000))
	table.Slot(0).Status = STATUS_EXECUTING
	table.Executing = 0
	for _, status := range []Status{STATUS_READY, STATUS_BLOCKED, STATUS_TERMINATED} {
		assert.ErrorIs(table.SetStatus(0, status), ErrStatusInvalid, status.String())
	}
	assert.Equal(STATUS_EXECUTING, table.Slot(0).Status)
	assert.NoError(table.Check())
}

func TestTable_String(t *testing.T) {
	assert := assert.New(t)

	table := NewTable(2)
	assert.NoError(table.InitSlot(0, 1, 0x10000, 0x18000))
	assert.NoError(table.InitSlot(1, 2, 0x20000, 0x28000))
	table.Slot(0).Status = STATUS_EXECUTING

	text := table.String()
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	assert.Equal([]string{
		"* 0: pid 1 executing pc 00010000 sp 00018000",
		"  1: pid 2 ready pc 00020000 sp 00028000",
	}, lines)

	count := 0
	for n, pcb := range table.All() {
		assert.Equal(uint32(n+1), pcb.Pid)
		count++
	}
	assert.Equal(2, count)

}
