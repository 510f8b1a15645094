// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"

	"github.com/ezrec/ukern/translate"
)

var f = translate.From

var (
	ErrProgramMissing = errors.New(f("program not loaded"))
	ErrProgramSize    = errors.New(f("program overlaps stack"))
	ErrNotReset       = errors.New(f("machine not reset"))
	ErrSlotRange      = errors.New(f("process slot out of range"))
	ErrIdle           = errors.New(f("no process runnable"))
)

// ErrRuntime indicates the process and location of a runtime error.
type ErrRuntime struct {
	Pid    uint32
	Pc     uint32
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("pid %d pc %08x line %d %v", err.Pid, err.Pc, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrLoad indicates the process whose program failed to load.
type ErrLoad struct {
	Slot    int
	Program string
	Err     error
}

func (err *ErrLoad) Error() string {
	return f("slot %d %v: %v", err.Slot, err.Program, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
