// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package kernel is the trap-driven core of μKern.
//
// The kernel owns a fixed process table and is entered only through traps:
// reset, interrupt and system call. Each handler borrows the trapped
// register context, mutates it in place, and returns; the machine then
// resumes whichever process the context now describes.
//
// Hardware is reached only through the interfaces in hardware.go.
package kernel
