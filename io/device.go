// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package io provides the simulated devices of the μKern machine: flat memory,
// a periodic timer, an interrupt controller and a UART.
package io

// Device defines the interface for clocked devices attached to the machine.
type Device interface {
	// Reset returns the device to its power-on state.
	Reset()
	// Tick advances the device by one machine cycle.
	Tick()
}
