// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package kernel

import (
	"errors"

	"github.com/ezrec/ukern/translate"
)

var f = translate.From

var (
	ErrNoSlots          = errors.New(f("no process slots"))
	ErrHardwareMissing  = errors.New(f("hardware missing"))
	ErrResetRepeated    = errors.New(f("reset repeated"))
	ErrNotBooted        = errors.New(f("kernel not booted"))
	ErrTrapInvalid      = errors.New(f("trap invalid"))
	ErrSyscallDuplicate = errors.New(f("system call duplicated"))
	ErrIrqDuplicate     = errors.New(f("interrupt handler duplicated"))
	ErrSinkInvalid      = errors.New(f("sink invalid"))
	ErrBufferRange      = errors.New(f("buffer out of range"))
)

// ErrSyscallUnknown is reported when no system call is registered for an id.
type ErrSyscallUnknown struct {
	Id uint32
}

func (err ErrSyscallUnknown) Error() string {
	return f("system call %d unknown", err.Id)
}

// ErrIrqUnknown is reported when an interrupt source has no handler.
type ErrIrqUnknown struct {
	Id uint32
}

func (err ErrIrqUnknown) Error() string {
	return f("interrupt %d unknown", err.Id)
}

// ErrWrite is reported when a write system call fails.
type ErrWrite struct {
	Pid uint32
	Fd  uint32
	Err error
}

func (err ErrWrite) Error() string {
	return f("pid %d write fd %d: %v", err.Pid, err.Fd, err.Err)
}

func (err ErrWrite) Unwrap() error {
	return err.Err
}
