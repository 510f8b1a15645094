// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"fmt"
	"iter"
	"maps"
)

const (
	GIC_SOURCES       = 96   // Number of interrupt sources.
	GIC_SOURCE_TIMER0 = 36   // Timer 0 and 1.
	GIC_SOURCE_UART0  = 44   // UART 0.
	GIC_SPURIOUS      = 1023 // Acknowledge result when nothing is pending.

	GIC_PMR_ALL = 0xf0 // Priority mask that admits every source.
	GIC_CTLR_ON = 0x01 // Interface or distributor enabled.
)

// Gic is a single-CPU interrupt controller. Sources are level triggered: a
// source stays pending until its device lowers it.
type Gic struct {
	Pmr      uint32 // CPU interface priority mask.
	CpuCtlr  uint32 // CPU interface control.
	DistCtlr uint32 // Distributor control.

	enabled [GIC_SOURCES / 32]uint32 // Per-source enables.
	pending [GIC_SOURCES / 32]uint32 // Per-source levels.
	active  [GIC_SOURCES / 32]uint32 // Acknowledged, awaiting end of interrupt.
}

var _ Device = (*Gic)(nil)

// Defines returns an iter of defines for the device.
func (gic *Gic) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"GIC_SOURCE_TIMER0": fmt.Sprintf("%d", GIC_SOURCE_TIMER0),
		"GIC_SOURCE_UART0":  fmt.Sprintf("%d", GIC_SOURCE_UART0),
		"GIC_SPURIOUS":      fmt.Sprintf("%d", GIC_SPURIOUS),
	})
}

func bit(id uint32) (word int, mask uint32, ok bool) {
	if id >= GIC_SOURCES {
		return
	}
	return int(id / 32), 1 << (id % 32), true
}

// Reset disables and clears every source.
func (gic *Gic) Reset() {
	*gic = Gic{}
}

// Tick has no effect; the controller is combinational.
func (gic *Gic) Tick() {
}

// Raise asserts the level of a source.
func (gic *Gic) Raise(id uint32) {
	if w, m, ok := bit(id); ok {
		gic.pending[w] |= m
	}
}

// Lower deasserts the level of a source.
func (gic *Gic) Lower(id uint32) {
	if w, m, ok := bit(id); ok {
		gic.pending[w] &^= m
	}
}

// Unmask enables a source at the distributor.
func (gic *Gic) Unmask(id uint32) {
	if w, m, ok := bit(id); ok {
		gic.enabled[w] |= m
	}
}

// Mask disables a source at the distributor.
func (gic *Gic) Mask(id uint32) {
	if w, m, ok := bit(id); ok {
		gic.enabled[w] &^= m
	}
}

// Enable opens the priority mask and enables the CPU interface and distributor.
func (gic *Gic) Enable() {
	gic.Pmr = GIC_PMR_ALL
	gic.CpuCtlr = GIC_CTLR_ON
	gic.DistCtlr = GIC_CTLR_ON
}

func (gic *Gic) on() bool {
	return gic.Pmr != 0 && (gic.CpuCtlr&GIC_CTLR_ON) != 0 && (gic.DistCtlr&GIC_CTLR_ON) != 0
}

// next returns the lowest numbered deliverable source.
func (gic *Gic) next() (id uint32, ok bool) {
	if !gic.on() {
		return
	}

	for w := range gic.pending {
		ready := gic.pending[w] & gic.enabled[w] &^ gic.active[w]
		if ready == 0 {
			continue
		}
		for n := range 32 {
			if (ready & (1 << n)) != 0 {
				return uint32(w*32 + n), true
			}
		}
	}

	return
}

// Asserted returns true if the IRQ line to the CPU is asserted.
func (gic *Gic) Asserted() bool {
	_, ok := gic.next()
	return ok
}

// Acknowledge returns the identifier of the pending source and marks it active,
// or returns GIC_SPURIOUS if nothing is deliverable.
func (gic *Gic) Acknowledge() (id uint32) {
	id, ok := gic.next()
	if !ok {
		return GIC_SPURIOUS
	}

	w, m, _ := bit(id)
	gic.active[w] |= m
	return
}

// Active returns true if a source has been acknowledged and not yet ended.
func (gic *Gic) Active(id uint32) bool {
	w, m, ok := bit(id)
	return ok && (gic.active[w]&m) != 0
}

// EndOfInterrupt completes an acknowledged source.
func (gic *Gic) EndOfInterrupt(id uint32) {
	if w, m, ok := bit(id); ok {
		gic.active[w] &^= m
	}
}
