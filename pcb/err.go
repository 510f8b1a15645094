// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package pcb

import (
	"errors"

	"github.com/ezrec/ukern/translate"
)

var f = translate.From

var (
	ErrSlotInvalid       = errors.New(f("process slot invalid"))
	ErrStatusInvalid     = errors.New(f("process status invalid"))
	ErrNoExecuting       = errors.New(f("no process executing"))
	ErrMultipleExecuting = errors.New(f("multiple processes executing"))
	ErrExecutingIndex    = errors.New(f("executing index mismatch"))
)

// ErrSlot reports an error against a process slot.
type ErrSlot struct {
	Slot int
	Err  error
}

func (err *ErrSlot) Error() string {
	return f("slot %d: %v", err.Slot, err.Err)
}

func (err *ErrSlot) Unwrap() error {
	return err.Err
}
