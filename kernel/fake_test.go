// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package kernel

import (
	"errors"
)

type fakeTimer struct {
	period  uint32
	running bool
	cleared int
}

func (timer *fakeTimer) Program(period uint32) {
	timer.period = period
	timer.running = true
}

func (timer *fakeTimer) ClearInterrupt() {
	timer.cleared++
}

func (timer *fakeTimer) Stop() {
	timer.running = false
}

type fakeIrq struct {
	pending  []uint32
	unmasked map[uint32]bool
	enabled  bool
	eoi      []uint32
}

func (irq *fakeIrq) Unmask(id uint32) {
	if irq.unmasked == nil {
		irq.unmasked = map[uint32]bool{}
	}
	irq.unmasked[id] = true
}

func (irq *fakeIrq) Mask(id uint32) {
	delete(irq.unmasked, id)
}

func (irq *fakeIrq) Enable() {
	irq.enabled = true
}

func (irq *fakeIrq) Acknowledge() (id uint32) {
	if len(irq.pending) == 0 {
		return IRQ_SPURIOUS
	}
	id = irq.pending[0]
	irq.pending = irq.pending[1:]
	return
}

func (irq *fakeIrq) EndOfInterrupt(id uint32) {
	irq.eoi = append(irq.eoi, id)
}

type fakeCpu struct {
	enabled bool
}

func (cpu *fakeCpu) EnableIrq() {
	cpu.enabled = true
}

var errSinkBroken = errors.New("sink broken")

type fakeSink struct {
	data  []byte
	limit int
}

func (sink *fakeSink) PutByte(value byte, block bool) (err error) {
	if sink.limit > 0 && len(sink.data) >= sink.limit {
		err = errSinkBroken
		return
	}
	sink.data = append(sink.data, value)
	return
}

var errMemory = errors.New("memory fault")

type fakeMemory struct {
	base uint32
	data []byte
}

func (mem *fakeMemory) ReadBytes(addr uint32, size uint32) (data []byte, err error) {
	if addr < mem.base || uint64(addr-mem.base)+uint64(size) > uint64(len(mem.data)) {
		err = errMemory
		return
	}
	offset := addr - mem.base
	data = append([]byte(nil), mem.data[offset:offset+size]...)
	return
}
