// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"fmt"
	"iter"
	"maps"
)

// Timer control register bits.
const (
	TIMER_CTRL_ONESHOT  = 0x01
	TIMER_CTRL_32BIT    = 0x02
	TIMER_CTRL_INTEN    = 0x20
	TIMER_CTRL_PERIODIC = 0x40
	TIMER_CTRL_ENABLE   = 0x80

	// TIMER_DEFAULT_PERIOD is 2^20 ticks.
	TIMER_DEFAULT_PERIOD = 0x00100000
)

// Timer is a down-counting timer. When the count reaches zero the raw
// interrupt is set and, if enabled, its source is raised at the controller
// until ClearInterrupt.
type Timer struct {
	Load  uint32 // Reload value.
	Value uint32 // Current count.
	Ctrl  uint32 // Control bits.

	Gic    *Gic   // Interrupt controller, if connected.
	Source uint32 // Source identifier at the controller.

	raw bool
}

var _ Device = (*Timer)(nil)

// Defines returns an iter of defines for the device.
func (timer *Timer) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"TIMER_DEFAULT_PERIOD": fmt.Sprintf("0x%x", TIMER_DEFAULT_PERIOD),
	})
}

// Reset stops the timer and clears its interrupt.
func (timer *Timer) Reset() {
	timer.Load = 0
	timer.Value = 0
	timer.Ctrl = 0
	timer.ClearInterrupt()
}

// Program arms a periodic count of period ticks with its interrupt enabled.
func (timer *Timer) Program(period uint32) {
	timer.Load = period
	timer.Value = period
	timer.Ctrl = TIMER_CTRL_32BIT
	timer.Ctrl |= TIMER_CTRL_PERIODIC
	timer.Ctrl |= TIMER_CTRL_INTEN
	timer.Ctrl |= TIMER_CTRL_ENABLE
}

// Stop disables the count.
func (timer *Timer) Stop() {
	timer.Ctrl &^= TIMER_CTRL_ENABLE
}

// Enabled returns true if the timer is counting.
func (timer *Timer) Enabled() bool {
	return (timer.Ctrl & TIMER_CTRL_ENABLE) != 0
}

// Interrupt returns the masked interrupt status.
func (timer *Timer) Interrupt() bool {
	return timer.raw && (timer.Ctrl&TIMER_CTRL_INTEN) != 0
}

// ClearInterrupt clears the raw interrupt and lowers the source.
func (timer *Timer) ClearInterrupt() {
	timer.raw = false
	if timer.Gic != nil {
		timer.Gic.Lower(timer.Source)
	}
}

// Tick counts down once.
func (timer *Timer) Tick() {
	if !timer.Enabled() {
		return
	}

	if timer.Value > 0 {
		timer.Value--
	}
	if timer.Value != 0 {
		return
	}

	timer.raw = true
	if timer.Interrupt() && timer.Gic != nil {
		timer.Gic.Raise(timer.Source)
	}

	if (timer.Ctrl&TIMER_CTRL_ONESHOT) != 0 || (timer.Ctrl&TIMER_CTRL_PERIODIC) == 0 {
		timer.Stop()
	} else {
		timer.Value = timer.Load
	}
}
