// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
memory_size  = 0x40000
timer_period = 0x1000
trace        = true

[[process]]
program    = "p3.s"
origin     = 0x10000
stack_top  = 0x18000

[[process]]
program    = "/abs/p4.s"
pid        = 9
origin     = 0x20000
stack_top  = 0x28000
stack_size = 0x2000
`

func TestParse(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Parse(strings.NewReader(testConfig), "/etc/ukern")
	require.NoError(t, err)

	assert.Equal(uint32(0), cfg.MemoryBase)
	assert.Equal(uint32(0x40000), cfg.MemorySize)
	assert.Equal(uint32(0x1000), cfg.TimerPeriod)
	assert.True(cfg.Trace)

	assert.Equal([]Process{
		{Program: filepath.Join("/etc/ukern", "p3.s"), Pid: 1, Origin: 0x10000, StackTop: 0x18000, StackSize: DEFAULT_STACK_SIZE},
		{Program: "/abs/p4.s", Pid: 9, Origin: 0x20000, StackTop: 0x28000, StackSize: 0x2000},
	}, cfg.Processes)

	assert.Equal(uint32(0x26000), cfg.Processes[1].StackBase())
}

func TestParse_Defaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Parse(strings.NewReader(`
[[process]]
program   = "a.s"
origin    = 0x1000
stack_top = 0x2000
`), "")
	require.NoError(t, err)

	assert.Equal(uint32(DEFAULT_MEMORY_SIZE), cfg.MemorySize)
	assert.Equal(uint32(DEFAULT_TIMER_PERIOD), cfg.TimerPeriod)
	assert.False(cfg.Trace)
	assert.Equal("a.s", cfg.Processes[0].Program)
}

func TestParse_Errors(t *testing.T) {
	assert := assert.New(t)

	process := func(fields string) string {
		return "[[process]]\nprogram = \"a.s\"\n" + fields + "\n"
	}

	table := [](struct {
		name string
		text string
		err  error
	}){
		{"empty", "", ErrConfigNoProcess},
		{"unknown key", "colour = 3\n" + process("origin = 0\nstack_top = 0x1000"), ErrConfigKey},
		{"unknown process key", process("origin = 0\nstack_top = 0x1000\nflavour = 1"), ErrConfigKey},
		{"program", "[[process]]\norigin = 0\nstack_top = 0x1000\n", ErrConfigProgram},
		{"align", process("origin = 2\nstack_top = 0x1000"), ErrConfigAlign},
		{"stack below origin", process("origin = 0x2000\nstack_top = 0x1000"), ErrConfigStack},
		{"stack too big", process("origin = 0x1000\nstack_top = 0x1800\nstack_size = 0x1000"), ErrConfigStack},
		{"memory", process("origin = 0x3f000\nstack_top = 0x41000"), ErrConfigMemory},
		{"overlap", process("origin = 0x2000\nstack_top = 0x4000") + process("origin = 0x1000\nstack_top = 0x3000"), ErrConfigOverlap},
		{"pid", process("pid = 3\norigin = 0\nstack_top = 0x2000") + process("pid = 3\norigin = 0x2000\nstack_top = 0x4000"), ErrConfigPid},
	}

	for _, entry := range table {
		cfg, err := Parse(strings.NewReader(entry.text), "")
		assert.ErrorIs(err, entry.err, entry.name)
		assert.Nil(cfg, entry.name)
	}
}

func TestParse_ProcessIndex(t *testing.T) {
	assert := assert.New(t)

	text := `
[[process]]
program   = "a.s"
origin    = 0x4000
stack_top = 0x6000

[[process]]
program   = "b.s"
origin    = 0x1000
stack_top = 0x5000
`
	_, err := Parse(strings.NewReader(text), "")

	var perr *ErrProcess
	if assert.ErrorAs(err, &perr) {
		assert.Equal(0, perr.Index)
		assert.ErrorIs(perr, ErrConfigOverlap)
	}
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "machine.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "p3.s"), cfg.Processes[0].Program)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[process]]\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(err, ErrConfigProgram)
	var ferr *ErrFile
	if assert.ErrorAs(err, &ferr) {
		assert.Equal(bad, ferr.Path)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)
}
