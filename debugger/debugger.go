// Package debugger implements a terminal step debugger over a running
// vm.Host, grounded on the teacher's debugger/tui.go: a tview.Application
// with bordered panels for registers/memory/output plus a single command
// input line, refreshed after every command.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thoriumlang/thm/vm"
)

// Debugger wraps a Host with the small command language the TUI drives:
// step, continue, read memory, dump, and help. Quitting is handled by the
// TUI itself, not by ExecuteCommand.
type Debugger struct {
	Host *vm.Host
}

// NewDebugger creates a Debugger over host.
func NewDebugger(host *vm.Host) *Debugger {
	return &Debugger{Host: host}
}

// ExecuteCommand parses and runs one command line, returning the text to
// show in the output panel.
func (d *Debugger) ExecuteCommand(line string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", nil
	}

	switch fields[0] {
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			parsed, err := strconv.Atoi(fields[1])
			if err != nil {
				return "", fmt.Errorf("invalid step count %q", fields[1])
			}
			n = parsed
		}
		executed, err := d.Host.Step(n)
		if err != nil {
			return fmt.Sprintf("stepped %d instruction(s) before fault", executed), err
		}
		return fmt.Sprintf("stepped %d instruction(s)", executed), nil

	case "continue", "c":
		executed, err := d.Host.Step(1 << 20)
		if err != nil {
			return fmt.Sprintf("ran %d instruction(s) before fault", executed), err
		}
		return fmt.Sprintf("ran %d instruction(s) until stop", executed), nil

	case "mem", "m":
		if len(fields) != 3 {
			return "", fmt.Errorf("usage: mem <address> <size>")
		}
		from, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			return "", fmt.Errorf("invalid address %q", fields[1])
		}
		size, err := strconv.ParseUint(fields[2], 0, 32)
		if err != nil {
			return "", fmt.Errorf("invalid size %q", fields[2])
		}
		data, err := d.Host.ReadMemory(uint32(from), uint32(size))
		if err != nil {
			return "", err
		}
		return formatHexDump(uint32(from), data), nil

	case "dump", "raw":
		return d.Host.CPU.DumpState(), nil

	case "help":
		return "commands: step [n], continue, mem <addr> <size>, dump, quit", nil

	default:
		return "", fmt.Errorf("unknown command %q", fields[0])
	}
}

func formatHexDump(from uint32, data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&b, "0x%08X  % X\n", from+uint32(i), data[i:end])
	}
	return b.String()
}

// RegisterText renders a snapshot's registers and flags as fixed-width
// text for the register panel.
func RegisterText(s vm.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pc=0x%08X sp=0x%08X cs=0x%08X\n", s.PC, s.SP, s.CS)
	fmt.Fprintf(&b, "zero=%v negative=%v state=%s steps=%d\n\n", s.Flags.Zero, s.Flags.Negative, s.State, s.Steps)
	for i := 0; i < len(s.Registers); i += 4 {
		for j := i; j < i+4 && j < len(s.Registers); j++ {
			fmt.Fprintf(&b, "r%-2d=%-11d ", j, s.Registers[j])
		}
		b.WriteString("\n")
	}
	return b.String()
}
