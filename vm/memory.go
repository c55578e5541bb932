// Package vm implements the thm execution engine: memory, the interrupt
// controller, the clock, and the CPU fetch/decode/execute loop. Grounded
// on the teacher's vm/memory.go (named, permissioned segments located by
// linear scan) and vm/cpu.go (register file plus state machine), adapted
// from ARM2's four fixed segments to thm's disjoint memory-mapped zones.
package vm

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/thoriumlang/thm/memmap"
)

// Memory is thm's address space: an ordered set of disjoint, named,
// permissioned zones (spec §4.6). A single RWMutex guards the zone data:
// Get takes the read lock and Set the write lock, each for one byte.
// Multi-byte reads and writes are therefore not atomic as a whole, and the
// RWMutex is not held across a CPU step.
type Memory struct {
	mu    sync.RWMutex
	zones []memmap.Zone
	data  [][]byte // data[i] backs zones[i]
}

// NewMemory builds the zone layout for a machine with ramSize bytes of
// RAM, with the ROM zone initialized from rom (reads beyond len(rom) but
// within the ROM zone return zero, per spec §4.6).
func NewMemory(ramSize uint32, rom []byte) *Memory {
	zones := memmap.Zones(ramSize)
	data := make([][]byte, len(zones))
	for i, z := range zones {
		data[i] = make([]byte, z.End-z.Start)
	}
	for i, z := range zones {
		if z.Name == "rom" {
			copy(data[i], rom)
		}
	}
	return &Memory{zones: zones, data: data}
}

// findZone returns the index of the zone containing addr, or -1 if addr
// is unmapped.
func (m *Memory) findZone(addr uint32) int {
	for i, z := range m.zones {
		if z.Contains(addr) {
			return i
		}
	}
	return -1
}

// Get reads one byte at addr. It fails if no zone covers addr or the zone
// is write-only.
func (m *Memory) Get(addr uint32) (byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.findZone(addr)
	if i < 0 || !m.zones[i].Mode.Readable() {
		return 0, false
	}
	offset := addr - uint32(m.zones[i].Start)
	return m.data[i][offset], true
}

// Set writes one byte at addr. It fails if no zone covers addr or the
// zone is read-only; a failed write performs no mutation.
func (m *Memory) Set(addr uint32, v byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.findZone(addr)
	if i < 0 || !m.zones[i].Mode.Writable() {
		return false
	}
	offset := addr - uint32(m.zones[i].Start)
	m.data[i][offset] = v
	return true
}

// GetBytes reads count bytes starting at from. A failure mid-range, or a
// range that runs past MaxAddress, returns false; no partial result is
// exposed.
func (m *Memory) GetBytes(from, count uint32) ([]byte, bool) {
	if uint64(from)+uint64(count) > uint64(memmap.MaxAddress)+1 {
		return nil, false
	}
	out := make([]byte, count)
	for i := uint32(0); i < count; i++ {
		b, ok := m.Get(from + i)
		if !ok {
			return nil, false
		}
		out[i] = b
	}
	return out, true
}

// SetBytes writes data starting at from. A failure mid-range returns
// false; bytes already written before the failing byte are not rolled
// back (spec §4.6 only guarantees the *reported* outcome, not atomic
// rollback).
func (m *Memory) SetBytes(from uint32, data []byte) bool {
	for i, b := range data {
		if !m.Set(from+uint32(i), b) {
			return false
		}
	}
	return true
}

// GetWord reads a big-endian 32-bit word at addr.
func (m *Memory) GetWord(addr uint32) (uint32, bool) {
	b, ok := m.GetBytes(addr, 4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

// SetWord writes v as a big-endian 32-bit word at addr.
func (m *Memory) SetWord(addr uint32, v uint32) bool {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return m.SetBytes(addr, b[:])
}

// Zones reports the memory map for diagnostics and the host framebuffer
// thread.
func (m *Memory) Zones() []memmap.Zone {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]memmap.Zone, len(m.zones))
	copy(out, m.zones)
	return out
}

// Fault describes a failed memory or CPU operation. PC is the program
// counter at the time of the fault, for diagnostics.
type Fault struct {
	PC      uint32
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at 0x%08X: %s", f.PC, f.Message)
}
