// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"
	"os"

	"github.com/ezrec/ukern/config"
	"github.com/ezrec/ukern/cpu"
	"github.com/ezrec/ukern/internal"
	"github.com/ezrec/ukern/io"
	"github.com/ezrec/ukern/kernel"
	"github.com/ezrec/ukern/pcb"
)

// Machine state. CPU + memory + devices + kernel.
type Machine struct {
	Verbose bool // If set, enables verbose logging.

	*cpu.Cpu           // User mode processor.
	Memory   io.Memory // User memory.
	Timer    io.Timer  // Preemption timer.
	Gic      io.Gic    // Interrupt controller.
	Uart     io.Uart   // Console.

	Config   config.Config  // Machine description.
	Programs []*cpu.Program // Assembled program of each slot.
	Kernel   *kernel.Kernel // Kernel, created by Reset.

	// OnUnhandled, if set, receives the kernel's unhandled events.
	OnUnhandled func(err error)

	Cycles int // Ticks since the last reset.

	idle bool // The scheduler found nothing runnable.
}

// NewMachine creates a machine from a validated description.
func NewMachine(cfg *config.Config) (m *Machine, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	m = &Machine{
		Config:   *cfg,
		Programs: make([]*cpu.Program, len(cfg.Processes)),
	}

	m.Memory = *io.NewMemory(cfg.MemoryBase, cfg.MemorySize)
	m.Cpu = cpu.NewCpu(&m.Memory)
	m.Timer.Gic = &m.Gic
	m.Timer.Source = io.GIC_SOURCE_TIMER0

	return
}

// Defines returns an iterator over the defines every program is assembled with.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		maps.All(map[string]string{
			"MEMORY_BASE": fmt.Sprintf("0x%x", m.Config.MemoryBase),
			"MEMORY_SIZE": fmt.Sprintf("0x%x", m.Config.MemorySize),
		}),
		m.Cpu.Defines(),
		kernel.Defines(),
		m.Timer.Defines(),
		m.Gic.Defines(),
		m.Uart.Defines(),
	)
}

// Assemble assembles the program of a slot at its origin and loads it.
func (m *Machine) Assemble(slot int, input stdio.Reader) (err error) {
	if slot < 0 || slot >= len(m.Config.Processes) {
		err = &ErrLoad{Slot: slot, Err: ErrSlotRange}
		return
	}

	proc := &m.Config.Processes[slot]

	defer func() {
		if err != nil {
			err = &ErrLoad{Slot: slot, Program: proc.Program, Err: err}
		}
	}()

	asm := &cpu.Assembler{
		Verbose: m.Verbose,
		Origin:  proc.Origin,
	}
	for key, value := range m.Defines() {
		asm.Predefine(key, value)
	}
	asm.Predefine("PID", fmt.Sprintf("%d", proc.Pid))
	asm.Predefine("STACK_TOP", fmt.Sprintf("0x%x", proc.StackTop))
	asm.Predefine("STACK_BASE", fmt.Sprintf("0x%x", proc.StackBase()))

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	if uint64(proc.Origin)+uint64(prog.Size()) > uint64(proc.StackBase()) {
		err = ErrProgramSize
		return
	}

	err = m.Memory.Load(prog.Origin, prog.Image())
	if err != nil {
		return
	}

	m.Programs[slot] = prog

	return
}

// Load assembles every configured program from its file.
func (m *Machine) Load() (err error) {
	for n, proc := range m.Config.Processes {
		var inf *os.File
		inf, err = os.Open(proc.Program)
		if err != nil {
			return
		}
		err = m.Assemble(n, inf)
		inf.Close()
		if err != nil {
			return
		}
	}

	return
}

// Reset resets the devices and the processor, then delivers the reset trap
// to a new kernel.
func (m *Machine) Reset() (err error) {
	slots := make([]kernel.Slot, len(m.Programs))
	for n, prog := range m.Programs {
		if prog == nil {
			err = &ErrLoad{Slot: n, Program: m.Config.Processes[n].Program, Err: ErrProgramMissing}
			return
		}
		proc := &m.Config.Processes[n]
		slots[n] = kernel.Slot{
			Pid:      proc.Pid,
			Entry:    prog.Entry,
			StackTop: proc.StackTop,
			Region:   kernel.Region{Base: proc.Origin, Limit: proc.StackTop},
		}
	}

	m.Cpu.Verbose = m.Verbose
	m.Uart.Verbose = m.Verbose
	m.Cpu.Reset()
	m.Timer.Reset()
	m.Gic.Reset()
	m.Uart.Reset()
	m.Cycles = 0
	m.idle = false

	// Reload the images, discarding anything the last run wrote.
	m.Memory.Reset()
	for _, prog := range m.Programs {
		err = m.Memory.Load(prog.Origin, prog.Image())
		if err != nil {
			return
		}
	}

	cfg := kernel.Config{
		Slots:       slots,
		TimerPeriod: m.Config.TimerPeriod,
		TimerSource: m.Timer.Source,
		Trace:       m.Config.Trace,
		Sinks:       map[uint32]kernel.ByteSink{kernel.FD_CONSOLE: &m.Uart},
	}
	hw := kernel.Hardware{
		Timer:  &m.Timer,
		Irq:    &m.Gic,
		Cpu:    m.Cpu,
		Memory: &m.Memory,
	}

	m.Kernel, err = kernel.New(cfg, hw)
	if err != nil {
		return
	}
	m.Kernel.Verbose = m.Verbose
	m.Kernel.Scheduler.Verbose = m.Verbose
	m.Kernel.Scheduler.OnIdle = func(slot int, status pcb.Status) {
		if m.Verbose {
			log.Printf("emulator: slot %d %v, nothing runnable", slot, status)
		}
		m.idle = true
	}
	m.Kernel.OnUnhandled = func(err error) {
		if m.OnUnhandled != nil {
			m.OnUnhandled(err)
		}
	}

	err = m.trap(cpu.Trap{Kind: cpu.TRAP_RESET})
	return
}

// trap enters the kernel with interrupts masked, and resumes from the
// context the kernel leaves behind.
func (m *Machine) trap(trap cpu.Trap) (err error) {
	ctx := m.Cpu.Context
	m.Cpu.Cpsr |= cpu.CPSR_I

	if m.Verbose {
		log.Printf("emulator: trap %v at %08x", trap, ctx.Pc)
	}

	err = m.Kernel.Dispatch(trap, &ctx)

	m.Cpu.Context = ctx

	if err == nil && m.idle {
		err = ErrIdle
	}

	return
}

// Pid returns the identifier of the executing process.
func (m *Machine) Pid() uint32 {
	if m.Kernel == nil {
		return 0
	}
	return m.Kernel.Table.Current().Pid
}

// LineNo returns the source line of the executing instruction.
func (m *Machine) LineNo() int {
	if m.Kernel == nil {
		return 0
	}
	prog := m.Programs[m.Kernel.Table.Executing]
	dbg := prog.Debug(m.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// Tick advances the devices by one tick, then either takes a pending
// interrupt or executes one instruction. Once no process is runnable, Tick
// returns ErrIdle.
func (m *Machine) Tick() (err error) {
	if m.Kernel == nil || !m.Kernel.Booted() {
		err = ErrNotReset
		return
	}

	if m.idle {
		err = ErrIdle
		return
	}

	m.Cpu.Verbose = m.Verbose
	m.Cycles++

	m.Timer.Tick()
	m.Gic.Tick()
	m.Uart.Tick()

	if m.Gic.Asserted() && m.Cpu.IrqEnabled() {
		err = m.trap(cpu.Trap{Kind: cpu.TRAP_IRQ})
		return
	}

	pid, pc, lineno := m.Pid(), m.Cpu.Pc, m.LineNo()
	trap, err := m.Cpu.Step()
	if err != nil {
		err = &ErrRuntime{Pid: pid, Pc: pc, LineNo: lineno, Err: err}
		return
	}

	if trap.Kind == cpu.TRAP_SVC {
		err = m.trap(trap)
	}

	return
}

// Run ticks the machine until ticks have elapsed or an error occurs.
func (m *Machine) Run(ticks int) (err error) {
	for range ticks {
		err = m.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Close stops the kernel's timer and drains the console.
func (m *Machine) Close() (err error) {
	if m.Kernel != nil {
		err = m.Kernel.Close()
		if err != nil {
			return
		}
	}

	err = m.Uart.Flush()
	return
}
