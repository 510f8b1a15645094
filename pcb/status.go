// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package pcb

// Status is the scheduling state of a process slot.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_INVALID    = Status(0) // invalid
	STATUS_READY      = Status(1) // ready
	STATUS_EXECUTING  = Status(2) // executing
	STATUS_BLOCKED    = Status(3) // blocked
	STATUS_TERMINATED = Status(4) // terminated
)

// Runnable returns true if the scheduler may select a slot in this state.
func (status Status) Runnable() bool {
	return status == STATUS_READY || status == STATUS_EXECUTING
}
