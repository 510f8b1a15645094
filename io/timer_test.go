// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimer_Periodic(t *testing.T) {
	assert := assert.New(t)

	gic := &Gic{}
	gic.Enable()
	gic.Unmask(GIC_SOURCE_TIMER0)

	timer := &Timer{Gic: gic, Source: GIC_SOURCE_TIMER0}
	timer.Program(3)
	assert.True(timer.Enabled())
	assert.Equal(uint32(TIMER_CTRL_32BIT|TIMER_CTRL_PERIODIC|TIMER_CTRL_INTEN|TIMER_CTRL_ENABLE), timer.Ctrl)

	timer.Tick()
	timer.Tick()
	assert.False(timer.Interrupt())
	assert.False(gic.Asserted())

	timer.Tick()
	assert.True(timer.Interrupt())
	assert.True(gic.Asserted())
	assert.Equal(uint32(3), timer.Value)

	timer.ClearInterrupt()
	assert.False(timer.Interrupt())
	assert.False(gic.Asserted())

	for range 3 {
		timer.Tick()
	}
	assert.True(timer.Interrupt())
}

func TestTimer_Stop(t *testing.T) {
	assert := assert.New(t)

	timer := &Timer{}
	timer.Program(1)
	timer.Stop()
	timer.Tick()
	assert.False(timer.Interrupt())
	assert.Equal(uint32(1), timer.Value)

	timer.Ctrl = TIMER_CTRL_ONESHOT | TIMER_CTRL_INTEN | TIMER_CTRL_ENABLE
	timer.Tick()
	assert.True(timer.Interrupt())
	assert.False(timer.Enabled())

	timer.Reset()
	assert.False(timer.Interrupt())
	assert.Equal(uint32(0), timer.Ctrl)
}
