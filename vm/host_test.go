package vm

import (
	"testing"
	"time"

	"github.com/thoriumlang/thm/memmap"
	"github.com/thoriumlang/thm/opcode"
)

func TestHostStepRunsGivenCount(t *testing.T) {
	h := NewHost(memmap.MinRAMSize, nil, time.Hour)
	h.Boot()
	defer h.Shutdown()

	h.Memory.SetBytes(0, []byte{byte(opcode.NOP), 0, 0, 0})
	h.Memory.SetBytes(4, []byte{byte(opcode.NOP), 0, 0, 0})
	h.Memory.SetBytes(8, []byte{byte(opcode.HALT), 0, 0, 0})

	n, err := h.Step(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("executed %d steps, want 2", n)
	}
	if h.StepCount() != 2 {
		t.Fatalf("StepCount() = %d, want 2", h.StepCount())
	}
	if !h.IsRunning() {
		t.Fatal("expected CPU still running after two NOPs")
	}
}

func TestHostStepStopsAtHalt(t *testing.T) {
	h := NewHost(memmap.MinRAMSize, nil, time.Hour)
	h.Boot()
	defer h.Shutdown()

	h.Memory.SetBytes(0, []byte{byte(opcode.HALT), 0, 0, 0})

	n, err := h.Step(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("executed %d steps, want 1 (halt stops early)", n)
	}
	if h.IsRunning() {
		t.Fatal("expected CPU not running after halt")
	}
}

func TestHostReadRegisterRejectsOutOfRange(t *testing.T) {
	h := NewHost(memmap.MinRAMSize, nil, time.Hour)
	h.Boot()
	defer h.Shutdown()

	if _, err := h.ReadRegister(memmap.RegPC); err != nil {
		t.Errorf("unexpected error reading pc: %v", err)
	}
	if _, err := h.ReadRegister(memmap.MaxRegister + 1); err == nil {
		t.Error("expected error reading an out-of-range ordinal")
	}
}

func TestHostReadMemoryRejectsUnmapped(t *testing.T) {
	h := NewHost(memmap.MinRAMSize, nil, time.Hour)
	h.Boot()
	defer h.Shutdown()

	if _, err := h.ReadMemory(0, 4); err != nil {
		t.Errorf("unexpected error reading mapped RAM: %v", err)
	}
	if _, err := h.ReadMemory(memmap.MaxAddress-1, 4); err == nil {
		t.Error("expected error reading past the address space")
	}
}

func TestHostSnapshotReflectsState(t *testing.T) {
	h := NewHost(memmap.MinRAMSize, nil, time.Hour)
	h.Boot()
	defer h.Shutdown()

	h.Memory.SetBytes(0, []byte{byte(opcode.MOVRI), 0, 0, 0, 0, 0, 0, 9})
	if _, err := h.Step(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := h.Snapshot()
	if snap.Registers[0] != 9 {
		t.Errorf("snapshot r0 = %d, want 9", snap.Registers[0])
	}
	if snap.Steps != 1 {
		t.Errorf("snapshot Steps = %d, want 1", snap.Steps)
	}
}
