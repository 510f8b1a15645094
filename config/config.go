// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads μKern machine descriptions from TOML.
package config

import (
	"cmp"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

const (
	DEFAULT_MEMORY_SIZE  = 0x40000    // Bytes of user memory.
	DEFAULT_TIMER_PERIOD = 0x00100000 // Ticks between preemptions.
	DEFAULT_STACK_SIZE   = 0x1000     // Bytes reserved below each stack top.
)

// Process describes one user program and where it lives.
type Process struct {
	Program   string `toml:"program"`    // Assembly source, relative to the config file.
	Pid       uint32 `toml:"pid"`        // Process identifier; zero selects slot+1.
	Origin    uint32 `toml:"origin"`     // Load address, and start of the process region.
	StackTop  uint32 `toml:"stack_top"`  // Initial stack pointer, and end of the process region.
	StackSize uint32 `toml:"stack_size"` // Bytes reserved for the stack.
}

// Config is a machine description.
type Config struct {
	MemoryBase  uint32    `toml:"memory_base"`
	MemorySize  uint32    `toml:"memory_size"`
	TimerPeriod uint32    `toml:"timer_period"`
	Trace       bool      `toml:"trace"`
	Processes   []Process `toml:"process"`
}

// Limit returns the first address past the end of memory.
func (cfg *Config) Limit() uint64 {
	return uint64(cfg.MemoryBase) + uint64(cfg.MemorySize)
}

// StackBase returns the lowest address of the stack.
func (proc *Process) StackBase() uint32 {
	return proc.StackTop - proc.StackSize
}

// Load reads a machine description from a file. Program paths are resolved
// relative to the directory of the file.
func Load(path string) (cfg *Config, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	cfg, err = Parse(file, filepath.Dir(path))
	if err != nil {
		err = &ErrFile{Path: path, Err: err}
		return
	}

	return
}

// Parse reads a machine description, resolving relative program paths
// against dir.
func Parse(input io.Reader, dir string) (cfg *Config, err error) {
	cfg = &Config{}

	md, err := toml.NewDecoder(input).Decode(cfg)
	if err != nil {
		cfg = nil
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		cfg = nil
		err = &ErrKey{Key: undecoded[0].String()}
		return
	}

	cfg.applyDefaults(dir)

	err = cfg.Validate()
	if err != nil {
		cfg = nil
		return
	}

	return
}

func (cfg *Config) applyDefaults(dir string) {
	if cfg.MemorySize == 0 {
		cfg.MemorySize = DEFAULT_MEMORY_SIZE
	}
	if cfg.TimerPeriod == 0 {
		cfg.TimerPeriod = DEFAULT_TIMER_PERIOD
	}

	for n := range cfg.Processes {
		proc := &cfg.Processes[n]
		if proc.Pid == 0 {
			proc.Pid = uint32(n + 1)
		}
		if proc.StackSize == 0 {
			proc.StackSize = DEFAULT_STACK_SIZE
		}
		if len(proc.Program) != 0 && !filepath.IsAbs(proc.Program) && len(dir) != 0 {
			proc.Program = filepath.Join(dir, proc.Program)
		}
	}
}

// Validate checks that every process has a program, a stack inside its own
// region, and a region inside memory that no other process shares.
func (cfg *Config) Validate() (err error) {
	if len(cfg.Processes) == 0 {
		err = ErrConfigNoProcess
		return
	}

	pids := map[uint32]bool{}
	for n := range cfg.Processes {
		proc := &cfg.Processes[n]

		procErr := func(e error) error {
			return &ErrProcess{Index: n, Err: e}
		}

		switch {
		case len(proc.Program) == 0:
			err = procErr(ErrConfigProgram)
		case (proc.Origin&3) != 0 || (proc.StackTop&3) != 0:
			err = procErr(ErrConfigAlign)
		case proc.StackTop <= proc.Origin || proc.StackSize > proc.StackTop-proc.Origin:
			err = procErr(ErrConfigStack)
		case proc.Origin < cfg.MemoryBase || uint64(proc.StackTop) > cfg.Limit():
			err = procErr(ErrConfigMemory)
		case pids[proc.Pid]:
			err = procErr(ErrConfigPid)
		}
		if err != nil {
			return
		}
		pids[proc.Pid] = true
	}

	// Regions must not overlap.
	order := make([]int, len(cfg.Processes))
	for n := range order {
		order[n] = n
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Compare(cfg.Processes[a].Origin, cfg.Processes[b].Origin)
	})
	for n := 1; n < len(order); n++ {
		this, prev := &cfg.Processes[order[n]], &cfg.Processes[order[n-1]]
		if this.Origin < prev.StackTop {
			err = &ErrProcess{Index: order[n], Err: ErrConfigOverlap}
			return
		}
	}

	return
}
