package debugger

import (
	"strings"
	"testing"
	"time"

	"github.com/thoriumlang/thm/memmap"
	"github.com/thoriumlang/thm/opcode"
	"github.com/thoriumlang/thm/vm"
)

func newTestDebugger(t *testing.T) *Debugger {
	t.Helper()
	host := vm.NewHost(memmap.MinRAMSize, nil, time.Hour)
	host.Boot()
	t.Cleanup(host.Shutdown)
	return NewDebugger(host)
}

func TestExecuteCommandStep(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Host.Memory.SetBytes(0, []byte{byte(opcode.NOP), 0, 0, 0})
	dbg.Host.Memory.SetBytes(4, []byte{byte(opcode.NOP), 0, 0, 0})

	out, err := dbg.ExecuteCommand("step 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "2") {
		t.Errorf("output = %q, want it to mention 2 steps", out)
	}
	if dbg.Host.StepCount() != 2 {
		t.Errorf("StepCount() = %d, want 2", dbg.Host.StepCount())
	}
}

func TestExecuteCommandContinueStopsAtHalt(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Host.Memory.SetBytes(0, []byte{byte(opcode.NOP), 0, 0, 0})
	dbg.Host.Memory.SetBytes(4, []byte{byte(opcode.HALT), 0, 0, 0})

	if _, err := dbg.ExecuteCommand("continue"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dbg.Host.IsRunning() {
		t.Fatal("expected CPU halted after continue")
	}
	if dbg.Host.StepCount() != 2 {
		t.Errorf("StepCount() = %d, want 2", dbg.Host.StepCount())
	}
}

func TestExecuteCommandMemDump(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Host.Memory.SetBytes(0, []byte{0xDE, 0xAD, 0xBE, 0xEF})

	out, err := dbg.ExecuteCommand("mem 0 4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "DE AD BE EF") {
		t.Errorf("output = %q, want it to contain the hex bytes", out)
	}
}

func TestExecuteCommandMemRejectsBadArgs(t *testing.T) {
	dbg := newTestDebugger(t)
	if _, err := dbg.ExecuteCommand("mem 0"); err == nil {
		t.Error("expected error for missing size argument")
	}
}

func TestExecuteCommandUnknown(t *testing.T) {
	dbg := newTestDebugger(t)
	if _, err := dbg.ExecuteCommand("frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestExecuteCommandEmptyIsNoop(t *testing.T) {
	dbg := newTestDebugger(t)
	out, err := dbg.ExecuteCommand("   ")
	if err != nil || out != "" {
		t.Errorf("got (%q, %v), want (\"\", nil)", out, err)
	}
}

func TestExecuteCommandDumpShowsRegisters(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Host.Memory.SetBytes(0, []byte{byte(opcode.NOP), 0, 0, 0})
	dbg.Host.Step(1)

	out, err := dbg.ExecuteCommand("dump")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Registers") {
		t.Errorf("dump output = %q, want it to contain the Registers field", out)
	}
}

func TestRegisterTextIncludesRegistersAndFlags(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Host.Memory.SetBytes(0, []byte{byte(opcode.MOVRI), 0, 0, 0, 0, 0, 0, 0})
	dbg.Host.Step(1)

	text := RegisterText(dbg.Host.Snapshot())
	if !strings.Contains(text, "zero=true") {
		t.Errorf("register text = %q, want it to show zero=true", text)
	}
	if !strings.Contains(text, "r0 =0") {
		t.Errorf("register text = %q, want it to show r0 =0", text)
	}
}
