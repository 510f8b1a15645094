// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package kernel

// Timer is the periodic tick source used for preemption.
type Timer interface {
	Program(period uint32) // Arm a periodic count with its interrupt enabled.
	ClearInterrupt()       // Acknowledge the tick at the timer.
	Stop()                 // Disable the count.
}

// InterruptController routes device interrupts to the processor.
type InterruptController interface {
	Unmask(id uint32)
	Mask(id uint32)
	Enable()
	Acknowledge() (id uint32)
	EndOfInterrupt(id uint32)
}

// IrqEnabler enables interrupts globally at the processor.
type IrqEnabler interface {
	EnableIrq()
}

// ByteSink is a character output device.
type ByteSink interface {
	PutByte(value byte, block bool) (err error)
}

// Memory is read access to user memory.
type Memory interface {
	ReadBytes(addr uint32, size uint32) (data []byte, err error)
}

// Hardware is the set of devices the kernel drives.
type Hardware struct {
	Timer  Timer               // Preemption tick.
	Irq    InterruptController // Interrupt controller.
	Cpu    IrqEnabler          // Global interrupt enable.
	Memory Memory              // User memory, for system call buffers.
}
