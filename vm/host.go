package vm

import (
	"fmt"
	"sync"
	"time"

	"github.com/thoriumlang/thm/memmap"
)

// Host owns one running machine: memory, interrupt controller, clock, and
// CPU, plus the run/stop lifecycle and the read-only control-surface
// queries of spec §6. Grounded on the teacher's separation between the
// CPU core and the surrounding emulator harness that drives it
// step-by-step or free-running.
type Host struct {
	mu sync.Mutex

	Memory *Memory
	PIC    *PIC
	Clock  *Clock
	CPU    *CPU

	running bool
	stop    chan struct{}
}

// NewHost assembles a machine with ramSize bytes of RAM, rom preloaded
// into the ROM zone, and a clock ticking at clockInterval.
func NewHost(ramSize uint32, rom []byte, clockInterval time.Duration) *Host {
	mem := NewMemory(ramSize, rom)
	pic := NewPIC()
	return &Host{
		Memory: mem,
		PIC:    pic,
		Clock:  NewClock(pic, clockInterval),
		CPU:    NewCPU(mem, pic),
	}
}

// Boot starts the clock and the CPU. It does not itself run instructions;
// call Step or Run to advance execution.
func (h *Host) Boot() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Clock.Start()
	h.CPU.Start()
}

// Shutdown stops the clock goroutine. Safe to call once, after which the
// Host must not be stepped again.
func (h *Host) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Clock.Stop()
}

// Step advances the CPU by n instructions (or until it leaves the
// Running state), returning the number of instructions actually
// executed and the first error encountered, if any.
func (h *Host) Step(n int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	executed := 0
	for ; executed < n; executed++ {
		if h.CPU.State != StateRunning {
			break
		}
		if err := h.CPU.Step(); err != nil {
			return executed, err
		}
	}
	return executed, nil
}

// Run free-runs the CPU on its own goroutine until it leaves the Running
// state or StopRun is called. It takes the Host mutex for one step at a
// time, so the Host's own queries (ReadRegister, ReadMemory, Snapshot)
// interleave between steps; readers that go to Memory directly, such as
// VideoControl, are not synchronized with step boundaries.
func (h *Host) Run() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stop = make(chan struct{})
	stop := h.stop
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			h.mu.Lock()
			state := h.CPU.State
			if state == StateRunning {
				_ = h.CPU.Step()
			}
			h.mu.Unlock()
			if state != StateRunning {
				h.mu.Lock()
				h.running = false
				h.mu.Unlock()
				return
			}
		}
	}()
}

// StopRun halts a Run goroutine without changing the CPU's own state.
func (h *Host) StopRun() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		close(h.stop)
		h.running = false
	}
}

// IsRunning reports whether the CPU is in the Running state (spec §6
// is_running).
func (h *Host) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.CPU.State == StateRunning
}

// StepCount reports the number of instructions the CPU has successfully
// executed (spec §6 get_step_count).
func (h *Host) StepCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.CPU.Steps
}

// ReadRegister reports register i's current value (spec §6
// read_register). i follows the same ordinal space as the assembler:
// 0..31 general-purpose, or memmap.RegPC/RegSP/RegCS.
func (h *Host) ReadRegister(i byte) (int32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i > memmap.MaxRegister && i != memmap.RegPC && i != memmap.RegSP && i != memmap.RegCS {
		return 0, fmt.Errorf("register %d out of range", i)
	}
	return h.CPU.readReg(i), nil
}

// ReadMemory reports size bytes starting at from (spec §6 read_memory).
func (h *Host) ReadMemory(from, size uint32) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.Memory.GetBytes(from, size)
	if !ok {
		return nil, fmt.Errorf("cannot read %d bytes at 0x%08X: unmapped or write-only", size, from)
	}
	return b, nil
}

// Snapshot is a point-in-time view of CPU state, used by the websocket
// control-surface stream after each step.
type Snapshot struct {
	Registers [memmap.RegCount]int32
	PC        uint32
	SP        uint32
	CS        uint32
	Flags     Flags
	State     State
	Steps     uint64
}

// Snapshot captures the CPU's current state.
func (h *Host) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		Registers: h.CPU.Registers,
		PC:        h.CPU.PC,
		SP:        h.CPU.SP,
		CS:        h.CPU.CS,
		Flags:     h.CPU.Flags,
		State:     h.CPU.State,
		Steps:     h.CPU.Steps,
	}
}
