// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/ukern/config"
	"github.com/ezrec/ukern/emulator"
)

func main() {
	var machine string
	var ticks int
	var verbose bool
	var dump bool
	var trace bool

	flag.StringVar(&machine, "c", "machine.toml", "Machine description")
	flag.IntVar(&ticks, "n", 10_000_000, "Ticks to run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&dump, "dump", false, "Dump the process table on exit")
	flag.BoolVar(&trace, "trace", false, "Write kernel trap markers to the console")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	cfg, err := config.Load(machine)
	if err != nil {
		log.Fatal(err)
	}
	if trace {
		cfg.Trace = true
	}

	emu, err := emulator.NewMachine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	emu.Verbose = verbose
	emu.Uart.Output = os.Stdout
	emu.OnUnhandled = func(err error) {
		log.Printf("pid %d: %v", emu.Pid(), err)
	}

	err = emu.Load()
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Run(ticks)
	if errors.Is(err, emulator.ErrIdle) {
		err = nil
	}

	if dump {
		fmt.Fprintln(os.Stderr, emu.Dump())
	}

	if cerr := emu.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err)
	}
}
