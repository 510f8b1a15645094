// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"errors"

	"github.com/ezrec/ukern/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull = errors.New(f("channel full"))

	// Memory errors
	ErrMemoryFault = errors.New(f("memory fault"))
	ErrMemoryAlign = errors.New(f("memory unaligned"))
)

// ErrAddress indicates the address of a memory error.
type ErrAddress struct {
	Addr uint32
	Err  error
}

func (err *ErrAddress) Error() string {
	return f("0x%08x %v", err.Addr, err.Err)
}

func (err *ErrAddress) Unwrap() error {
	return err.Err
}
