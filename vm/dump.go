package vm

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/thoriumlang/thm/memmap"
)

// DumpState renders the CPU's full internal state (registers, flags, the
// three special registers, lifecycle state, and the last fault if any) as
// a structured multi-line dump, for display when a step panics. Grounded
// on the teacher's reach for go-spew wherever a debugger needs to show a
// raw struct dump rather than a hand-formatted one.
func (c *CPU) DumpState() string {
	return spew.Sdump(struct {
		Registers [memmap.RegCount]int32
		PC, SP, CS uint32
		Flags      Flags
		State      State
		Steps      uint64
		LastFault  error
	}{
		Registers: c.Registers,
		PC:        c.PC,
		SP:        c.SP,
		CS:        c.CS,
		Flags:     c.Flags,
		State:     c.State,
		Steps:     c.Steps,
		LastFault: c.LastFault,
	})
}
