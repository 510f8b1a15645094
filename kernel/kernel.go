// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package kernel

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ukern/cpu"
	"github.com/ezrec/ukern/pcb"
	"github.com/ezrec/ukern/sched"
)

const (
	IRQ_SOURCE_TIMER0 = 36   // Default timer interrupt source.
	IRQ_SPURIOUS      = 1023 // Acknowledge result when nothing is pending.

	TIMER_PERIOD_DEFAULT = 0x00100000 // Ticks between preemptions.
)

// Region is a range of user memory [Base, Limit).
type Region struct {
	Base  uint32
	Limit uint32
}

// Empty returns true if the region is unset.
func (region Region) Empty() bool {
	return region.Limit <= region.Base
}

// Contains returns true if [addr, addr+size) lies in the region.
func (region Region) Contains(addr uint32, size uint32) bool {
	if addr < region.Base || addr > region.Limit {
		return false
	}
	return uint64(addr)+uint64(size) <= uint64(region.Limit)
}

// Slot is the boot description of one process.
type Slot struct {
	Pid      uint32 // Process identifier.
	Entry    uint32 // Initial program counter.
	StackTop uint32 // Initial stack pointer.
	Region   Region // Memory the process may pass to system calls. Empty is unrestricted.
}

// Config is the boot configuration of the kernel.
type Config struct {
	Slots       []Slot              // Processes, in slot order. Slot 0 runs first.
	TimerPeriod uint32              // Preemption period; zero selects TIMER_PERIOD_DEFAULT.
	TimerSource uint32              // Timer interrupt source; zero selects IRQ_SOURCE_TIMER0.
	Trace       bool                // If set, writes trap markers to the console.
	Sinks       map[uint32]ByteSink // Output devices by file descriptor.
}

// Stats counts kernel events.
type Stats struct {
	Resets   int // Reset traps.
	Irqs     int // Interrupt traps.
	Svcs     int // System call traps.
	Spurious int // Interrupts acknowledged with nothing pending.

	Unhandled       int // Events routed to the unhandled arm.
	UnknownIrqs     int // Interrupts with no handler.
	UnknownSyscalls int // System calls with no handler.
	WriteErrors     int // Failed writes.
}

// Syscall is a system call handler. Arguments are in r0-r2 of ctx, and the
// result is returned in r0.
type Syscall func(k *Kernel, ctx *cpu.Context)

// IrqHandler is a device interrupt handler. It must clear the source at
// the device.
type IrqHandler func(k *Kernel, ctx *cpu.Context)

// Kernel is the trap dispatcher and its process table.
type Kernel struct {
	Verbose bool // If set, logs every trap.

	Config
	Hardware

	Table     *pcb.Table       // Process table.
	Scheduler *sched.Scheduler // Round-robin scheduler over Table.

	// OnUnhandled, if set, is called with every unknown interrupt, unknown
	// system call and failed write.
	OnUnhandled func(err error)

	Stats Stats

	syscalls map[uint32]Syscall
	irqs     map[uint32]IrqHandler
	booted   bool
}

// New creates a kernel for a fixed set of processes. The process table
// capacity is the number of configured slots.
func New(cfg Config, hw Hardware) (k *Kernel, err error) {
	if len(cfg.Slots) == 0 {
		err = ErrNoSlots
		return
	}

	if hw.Timer == nil || hw.Irq == nil || hw.Cpu == nil {
		err = ErrHardwareMissing
		return
	}

	if cfg.TimerPeriod == 0 {
		cfg.TimerPeriod = TIMER_PERIOD_DEFAULT
	}
	if cfg.TimerSource == 0 {
		cfg.TimerSource = IRQ_SOURCE_TIMER0
	}
	cfg.Slots = append([]Slot(nil), cfg.Slots...)
	cfg.Sinks = maps.Clone(cfg.Sinks)

	table := pcb.NewTable(len(cfg.Slots))

	k = &Kernel{
		Config:    cfg,
		Hardware:  hw,
		Table:     table,
		Scheduler: sched.New(table),
		syscalls:  map[uint32]Syscall{},
		irqs:      map[uint32]IrqHandler{},
	}

	for id, fn := range builtinSyscalls {
		err = k.Register(id, fn)
		if err != nil {
			k = nil
			return
		}
	}

	return
}

// Defines returns the system call ABI constants for user programs.
func Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"SYS_YIELD":   fmt.Sprintf("%d", SYS_YIELD),
		"SYS_WRITE":   fmt.Sprintf("%d", SYS_WRITE),
		"FD_CONSOLE":  fmt.Sprintf("%d", FD_CONSOLE),
		"WRITE_ERROR": fmt.Sprintf("0x%x", WRITE_ERROR),
	})
}

// Booted returns true once the reset trap has been handled.
func (k *Kernel) Booted() bool {
	return k.booted
}

// Close stops the preemption timer and masks its source.
func (k *Kernel) Close() (err error) {
	k.Timer.Stop()
	k.Irq.Mask(k.TimerSource)
	return
}

// Dispatch routes a trap to its handler.
func (k *Kernel) Dispatch(trap cpu.Trap, ctx *cpu.Context) (err error) {
	switch trap.Kind {
	case cpu.TRAP_RESET:
		err = k.HandleReset(ctx)
	case cpu.TRAP_IRQ:
		err = k.HandleIrq(ctx)
	case cpu.TRAP_SVC:
		err = k.HandleSvc(ctx, trap.Id)
	default:
		err = errors.Join(ErrTrapInvalid, fmt.Errorf("%v", trap))
	}

	return
}

// HandleReset initialises every process slot, selects slot 0 to run first
// by restoring it into ctx, and starts the preemption timer.
func (k *Kernel) HandleReset(ctx *cpu.Context) (err error) {
	if k.booted {
		err = ErrResetRepeated
		return
	}

	k.Stats.Resets++
	k.trace(" RST")

	for n, slot := range k.Slots {
		err = k.Table.InitSlot(n, slot.Pid, slot.Entry, slot.StackTop)
		if err != nil {
			return
		}
	}

	first := k.Table.Slot(0)
	first.Restore(ctx)
	first.Status = pcb.STATUS_EXECUTING
	k.Table.Executing = 0

	k.Timer.Program(k.TimerPeriod)
	k.Irq.Unmask(k.TimerSource)
	k.Irq.Enable()
	k.Cpu.EnableIrq()

	k.booted = true

	if k.Verbose {
		log.Printf("kernel: reset, %d processes, timer period %d on irq %d", len(k.Slots), k.TimerPeriod, k.TimerSource)
	}

	return
}

// HandleIrq acknowledges the pending interrupt and services it. The timer
// interrupt reschedules. The end of interrupt is always signalled, once.
func (k *Kernel) HandleIrq(ctx *cpu.Context) (err error) {
	id := k.Irq.Acknowledge()
	defer k.Irq.EndOfInterrupt(id)

	if !k.booted {
		err = ErrNotBooted
		return
	}

	k.Stats.Irqs++
	k.trace(" IRQ")

	if k.Verbose {
		log.Printf("kernel: irq %d", id)
	}

	if id == k.TimerSource {
		k.Timer.ClearInterrupt()
		k.reschedule(ctx)
		return
	}

	if fn, ok := k.irqs[id]; ok {
		fn(k, ctx)
		return
	}

	if id == IRQ_SPURIOUS {
		k.Stats.Spurious++
		return
	}

	k.unhandled(ErrIrqUnknown{Id: id})

	return
}

// HandleSvc dispatches a system call. Unknown identifiers leave the context
// untouched.
func (k *Kernel) HandleSvc(ctx *cpu.Context, id uint32) (err error) {
	if !k.booted {
		err = ErrNotBooted
		return
	}

	k.Stats.Svcs++

	fn, ok := k.syscalls[id]
	if !ok {
		k.unhandled(ErrSyscallUnknown{Id: id})
		return
	}

	if k.Verbose {
		log.Printf("kernel: pid %d svc %d", k.Table.Current().Pid, id)
	}

	fn(k, ctx)

	return
}

// RegisterIrq adds a handler for a device interrupt source, and unmasks it.
func (k *Kernel) RegisterIrq(id uint32, fn IrqHandler) (err error) {
	_, ok := k.irqs[id]
	if ok || id == k.TimerSource {
		err = ErrIrqDuplicate
		return
	}

	k.irqs[id] = fn
	k.Irq.Unmask(id)

	return
}

// reschedule runs the scheduler on the trapped context.
func (k *Kernel) reschedule(ctx *cpu.Context) {
	k.trace(" SCH")
	k.Scheduler.Reschedule(ctx)
}

// unhandled is the single arm for events the kernel cannot service.
func (k *Kernel) unhandled(err error) {
	k.Stats.Unhandled++

	switch err.(type) {
	case ErrIrqUnknown:
		k.Stats.UnknownIrqs++
	case ErrSyscallUnknown:
		k.Stats.UnknownSyscalls++
	case ErrWrite:
		k.Stats.WriteErrors++
	}

	if k.Verbose {
		log.Printf("kernel: unhandled: %v", err)
	}

	if k.OnUnhandled != nil {
		k.OnUnhandled(err)
	}
}

// trace writes a diagnostic marker to the console.
func (k *Kernel) trace(marker string) {
	if !k.Trace {
		return
	}

	sink, ok := k.Sinks[FD_CONSOLE]
	if !ok {
		return
	}

	for _, c := range []byte(marker) {
		err := sink.PutByte(c, true)
		if err != nil {
			if k.Verbose {
				log.Printf("kernel: trace: %v", err)
			}
			return
		}
	}
}
