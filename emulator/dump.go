// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	dumpHeaderStyle  = lipgloss.NewStyle().Bold(true)
	dumpCurrentStyle = lipgloss.NewStyle().Reverse(true)
)

const dumpFormat = "%-4v %-5v %-10v %-8v %-8v %-8v %5v"

// Dump renders the process table, with the live registers of the executing
// process.
func (m *Machine) Dump() string {
	rows := []string{
		dumpHeaderStyle.Render(fmt.Sprintf(dumpFormat, "SLOT", "PID", "STATUS", "PC", "SP", "LR", "LINE")),
	}

	if m.Kernel == nil {
		return rows[0]
	}

	table := m.Kernel.Table
	for n, proc := range table.All() {
		ctx := proc.Ctx
		if n == table.Executing {
			ctx = m.Cpu.Context
		}

		lineno := 0
		if prog := m.Programs[n]; prog != nil {
			if dbg := prog.Debug(ctx.Pc); dbg.Opcode != nil {
				lineno = dbg.LineNo
			}
		}

		row := fmt.Sprintf(dumpFormat, n, proc.Pid, proc.Status,
			fmt.Sprintf("%08x", ctx.Pc),
			fmt.Sprintf("%08x", ctx.Sp),
			fmt.Sprintf("%08x", ctx.Lr),
			lineno)
		if n == table.Executing {
			row = dumpCurrentStyle.Render(row)
		}
		rows = append(rows, row)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
