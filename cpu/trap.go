// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
)

// TrapKind is the class of a trap into the kernel.
type TrapKind int

//go:generate go tool stringer -linecomment -type=TrapKind
const (
	TRAP_NONE  = TrapKind(0) // none
	TRAP_RESET = TrapKind(1) // reset
	TRAP_IRQ   = TrapKind(2) // irq
	TRAP_SVC   = TrapKind(3) // svc
)

// Trap is a transfer of control into the kernel.
type Trap struct {
	Kind TrapKind // Trap class.
	Id   uint32   // System call identifier, for TRAP_SVC.
}

func (trap Trap) String() string {
	if trap.Kind == TRAP_SVC {
		return fmt.Sprintf("%v #%d", trap.Kind, trap.Id)
	}
	return trap.Kind.String()
}
