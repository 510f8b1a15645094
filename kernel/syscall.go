// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package kernel

import (
	"errors"

	"github.com/ezrec/ukern/cpu"
)

// System call identifiers.
const (
	SYS_YIELD = 0 // yield()
	SYS_WRITE = 1 // write(fd, buf, n) -> n
)

const (
	FD_CONSOLE  = 1          // File descriptor of the console sink.
	WRITE_ERROR = 0xFFFFFFFF // write() result on failure.
)

var builtinSyscalls = map[uint32]Syscall{
	SYS_YIELD: sysYield,
	SYS_WRITE: sysWrite,
}

// Register adds a system call.
func (k *Kernel) Register(id uint32, fn Syscall) (err error) {
	if _, ok := k.syscalls[id]; ok {
		err = ErrSyscallDuplicate
		return
	}

	k.syscalls[id] = fn
	return
}

// Reschedule gives up the processor, as the timer does.
func (k *Kernel) Reschedule(ctx *cpu.Context) {
	k.reschedule(ctx)
}

// sysYield gives up the rest of the time slice.
func sysYield(k *Kernel, ctx *cpu.Context) {
	k.Reschedule(ctx)
}

// sysWrite emits r2 bytes from the buffer at r1 to the sink selected by r0,
// and returns the count written in r0.
func sysWrite(k *Kernel, ctx *cpu.Context) {
	fd := ctx.Gpr[0]
	buf := ctx.Gpr[1]
	size := ctx.Gpr[2]

	current := k.Table.Current()

	fail := func(err error) {
		ctx.Gpr[0] = WRITE_ERROR
		k.unhandled(ErrWrite{Pid: current.Pid, Fd: fd, Err: err})
	}

	sink, ok := k.Sinks[fd]
	if !ok || sink == nil {
		fail(ErrSinkInvalid)
		return
	}

	if size == 0 {
		ctx.Gpr[0] = 0
		return
	}

	region := k.Slots[k.Table.Executing].Region
	if !region.Empty() && !region.Contains(buf, size) {
		fail(ErrBufferRange)
		return
	}

	if k.Memory == nil {
		fail(ErrBufferRange)
		return
	}

	data, err := k.Memory.ReadBytes(buf, size)
	if err != nil {
		fail(errors.Join(ErrBufferRange, err))
		return
	}

	written := uint32(0)
	for _, c := range data {
		err = sink.PutByte(c, true)
		if err != nil {
			break
		}
		written++
	}

	// A short write still reports the bytes the sink took.
	ctx.Gpr[0] = written
	if err != nil {
		k.unhandled(ErrWrite{Pid: current.Pid, Fd: fd, Err: err})
	}
}
