// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
)

const (
	// UART_FIFO_DEPTH is the default transmit FIFO depth in bytes.
	UART_FIFO_DEPTH = 16
)

// Uart is a transmit-only serial port. Bytes are queued in a bounded FIFO and
// drained to Output one per Tick, or all at once by Flush. Bytes that Output
// rejects are dropped.
type Uart struct {
	Verbose bool      // If set, logs output errors.
	Output  io.Writer // Destination of transmitted bytes; nil discards.
	Depth   int       // FIFO depth; zero selects UART_FIFO_DEPTH.

	Transmitted int // Bytes accepted by Output.
	Errors      int // Failed writes to Output.

	fifo []byte
}

var _ Device = (*Uart)(nil)

// Defines returns an iter of defines for the device.
func (uart *Uart) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"UART_FIFO_DEPTH": fmt.Sprintf("%d", uart.depth()),
	})
}

func (uart *Uart) depth() int {
	if uart.Depth <= 0 {
		return UART_FIFO_DEPTH
	}
	return uart.Depth
}

// Reset discards any queued bytes.
func (uart *Uart) Reset() {
	uart.fifo = uart.fifo[:0]
	uart.Transmitted = 0
	uart.Errors = 0
}

// Pending returns the number of queued bytes.
func (uart *Uart) Pending() int {
	return len(uart.fifo)
}

// PutByte queues a byte for transmission. When the FIFO is full a blocking put
// drains it first, and a non-blocking put fails with ErrChannelFull.
func (uart *Uart) PutByte(value byte, block bool) (err error) {
	if len(uart.fifo) >= uart.depth() {
		if !block {
			err = ErrChannelFull
			return
		}
		err = uart.Flush()
		if err != nil {
			return
		}
	}

	uart.fifo = append(uart.fifo, value)
	return
}

// Tick transmits one queued byte.
func (uart *Uart) Tick() {
	if len(uart.fifo) == 0 {
		return
	}

	err := uart.transmit(uart.fifo[:1])
	uart.fifo = uart.fifo[1:]
	if err != nil && uart.Verbose {
		log.Printf("uart: %v", err)
	}
}

// Flush transmits every queued byte.
func (uart *Uart) Flush() (err error) {
	if len(uart.fifo) == 0 {
		return
	}

	err = uart.transmit(uart.fifo)
	uart.fifo = uart.fifo[:0]
	return
}

func (uart *Uart) transmit(data []byte) (err error) {
	n := len(data)
	if uart.Output != nil {
		n, err = uart.Output.Write(data)
	}
	uart.Transmitted += n
	if err != nil {
		uart.Errors++
	}
	return
}
