// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package pcb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ukern/cpu"
)

func TestPcb_SaveRestore(t *testing.T) {
	assert := assert.New(t)

	ctx := &cpu.Context{
		Cpsr: cpu.CPSR_USR_IRQ | cpu.CPSR_Z,
		Pc:   0x10020,
		Sp:   0x17ff0,
		Lr:   0x10004,
	}
	for n := range ctx.Gpr {
		ctx.Gpr[n] = uint32(0xa0 + n)
	}
	orig := *ctx

	pcb := &Pcb{}
	pcb.Save(ctx)

	// Saving is a copy.
	ctx.Gpr[0] = 0xdead
	ctx.Pc = 0
	assert.Equal(orig, pcb.Ctx)

	pcb.Restore(ctx)
	assert.Equal(orig, *ctx)
}

func TestStatus(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		status   Status
		name     string
		runnable bool
	}){
		{STATUS_INVALID, "invalid", false},
		{STATUS_READY, "ready", true},
		{STATUS_EXECUTING, "executing", true},
		{STATUS_BLOCKED, "blocked", false},
		{STATUS_TERMINATED, "terminated", false},
		{Status(9), "Status(9)", false},
	}

	for _, entry := range table {
		assert.Equal(entry.name, entry.status.String())
		assert.Equal(entry.runnable, entry.status.Runnable(), entry.name)
	}
}
