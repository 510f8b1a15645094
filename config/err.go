// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package config

import (
	"errors"

	"github.com/ezrec/ukern/translate"
)

var f = translate.From

var (
	ErrConfigNoProcess = errors.New(f("no process configured"))
	ErrConfigProgram   = errors.New(f("program missing"))
	ErrConfigAlign     = errors.New(f("origin or stack top unaligned"))
	ErrConfigStack     = errors.New(f("stack outside process region"))
	ErrConfigMemory    = errors.New(f("process region outside memory"))
	ErrConfigOverlap   = errors.New(f("process regions overlap"))
	ErrConfigPid       = errors.New(f("pid duplicated"))
	ErrConfigKey       = errors.New(f("unknown key"))
)

// ErrKey is returned for a key the machine description does not define.
type ErrKey struct {
	Key string
}

func (err *ErrKey) Error() string {
	return f("unknown key '%v'", err.Key)
}

func (err *ErrKey) Is(target error) bool {
	return target == ErrConfigKey
}

// ErrProcess is an error in one [[process]] table.
type ErrProcess struct {
	Index int
	Err   error
}

func (err *ErrProcess) Error() string {
	return f("process %d: %v", err.Index, err.Err)
}

func (err *ErrProcess) Unwrap() error {
	return err.Err
}

// ErrFile is an error in a machine description file.
type ErrFile struct {
	Path string
	Err  error
}

func (err *ErrFile) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrFile) Unwrap() error {
	return err.Err
}
