// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUart_Tick(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	uart := &Uart{Output: out}

	assert.NoError(uart.PutByte('h', false))
	assert.NoError(uart.PutByte('i', false))
	assert.Equal(2, uart.Pending())
	assert.Equal(0, out.Len())

	uart.Tick()
	assert.Equal("h", out.String())
	uart.Tick()
	uart.Tick()
	assert.Equal("hi", out.String())
	assert.Equal(2, uart.Transmitted)
	assert.Equal(0, uart.Pending())
}

func TestUart_Full(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	uart := &Uart{Output: out, Depth: 2}

	assert.NoError(uart.PutByte('a', false))
	assert.NoError(uart.PutByte('b', false))
	assert.Equal(ErrChannelFull, uart.PutByte('c', false))
	assert.Equal("", out.String())

	// A blocking put drains the FIFO first.
	assert.NoError(uart.PutByte('c', true))
	assert.Equal("ab", out.String())

	assert.NoError(uart.Flush())
	assert.Equal("abc", out.String())
}

func TestUart_Discard(t *testing.T) {
	assert := assert.New(t)

	uart := &Uart{}
	for _, c := range []byte("discarded") {
		assert.NoError(uart.PutByte(c, true))
	}
	assert.NoError(uart.Flush())
	assert.Equal(9, uart.Transmitted)

	uart.Reset()
	assert.Equal(0, uart.Transmitted)
	assert.Equal(0, uart.Pending())
}

var errBroken = errors.New("broken")

// shortWriter accepts limit bytes, then fails.
type shortWriter struct {
	bytes.Buffer
	limit int
}

func (w *shortWriter) Write(data []byte) (n int, err error) {
	n = min(len(data), w.limit-w.Len())
	w.Buffer.Write(data[:n])
	if n < len(data) {
		err = errBroken
	}
	return
}

func TestUart_OutputError(t *testing.T) {
	assert := assert.New(t)

	out := &shortWriter{limit: 3}
	uart := &Uart{Output: out}

	for _, c := range []byte("hello") {
		assert.NoError(uart.PutByte(c, true))
	}
	assert.ErrorIs(uart.Flush(), errBroken)
	assert.Equal("hel", out.String())
	assert.Equal(3, uart.Transmitted)
	assert.Equal(1, uart.Errors)
	assert.Equal(0, uart.Pending())

	assert.NoError(uart.PutByte('!', true))
	uart.Tick()
	assert.Equal(3, uart.Transmitted)
	assert.Equal(2, uart.Errors)
	assert.Equal(0, uart.Pending())
}
