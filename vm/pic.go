package vm

import (
	"sync/atomic"

	"github.com/thoriumlang/thm/memmap"
)

// PIC is the programmable interrupt controller: 256 lines, each tracked
// by an active bit and a masked bit. Grounded on the teacher's
// concurrency-safe design for shared CPU state, adapted to the original
// interrupts.rs model of two parallel boolean arrays; here backed by
// atomic.Bool per line so trigger/mask/unmask/poll are each individually
// safe under concurrent callers (spec §4.8, §5) without a single shared
// lock serializing unrelated lines.
type PIC struct {
	active [memmap.InterruptsCount]atomic.Bool
	masked [memmap.InterruptsCount]atomic.Bool
}

// NewPIC returns a PIC with every line inactive and unmasked.
func NewPIC() *PIC {
	return &PIC{}
}

// Trigger sets line i active. Safe to call from any goroutine. A line
// that is already active stays active: missed ticks are coalesced.
func (p *PIC) Trigger(i byte) {
	p.active[i].Store(true)
}

// Mask sets line i's mask bit.
func (p *PIC) Mask(i byte) {
	p.masked[i].Store(true)
}

// Unmask clears line i's mask bit.
func (p *PIC) Unmask(i byte) {
	p.masked[i].Store(false)
}

// Poll returns the lowest-numbered active, unmasked line, masking and
// resetting it as a side effect; it returns ok == false if no such line
// exists.
func (p *PIC) Poll() (line byte, ok bool) {
	for i := 0; i < memmap.InterruptsCount; i++ {
		if p.active[i].Load() && !p.masked[i].Load() {
			p.masked[i].Store(true)
			p.active[i].Store(false)
			return byte(i), true
		}
	}
	return 0, false
}
