package vm

import (
	"fmt"
	"log"
	"time"

	"github.com/thoriumlang/thm/memmap"
	"github.com/thoriumlang/thm/opcode"
)

// State is a CPU lifecycle state (spec §4.7).
type State int

const (
	StateStopped State = iota
	StateRunning
	StateHalted
	StatePanicked
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StatePanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Flags holds the two condition bits updated by arithmetic, compare, and
// move operations.
type Flags struct {
	Zero     bool
	Negative bool
}

// CPU is the fetch/decode/execute engine: a fixed register file plus the
// lifecycle state machine of spec §4.7. Grounded on the teacher's CPU
// struct (vm/cpu.go: register file, flags, a single step method) adapted
// from ARM2's multi-mode register banks to thm's flat general-purpose
// file plus PC/SP/CS.
type CPU struct {
	Registers [memmap.RegCount]int32
	PC        uint32
	SP        uint32
	CS        uint32
	Flags     Flags
	State     State
	Steps     uint64

	LastFault error

	mem   *Memory
	pic   *PIC
	bench [memmap.InterruptsCount]time.Time
}

// NewCPU creates a CPU wired to mem and pic, in the Stopped state.
func NewCPU(mem *Memory, pic *PIC) *CPU {
	return &CPU{mem: mem, pic: pic}
}

// Start transitions Stopped -> Running, initializing SP to the top of the
// reserved stack region and CS/PC to zero.
func (c *CPU) Start() {
	if c.State != StateStopped {
		return
	}
	c.SP = memmap.StackSize
	c.PC = 0
	c.CS = 0
	c.State = StateRunning
}

// Step performs one fetch/decode/execute cycle, or services a pending
// interrupt if one is unmasked. It is a no-op error if the CPU is not
// Running.
func (c *CPU) Step() error {
	if c.State != StateRunning {
		return fmt.Errorf("cannot step: CPU is %s", c.State)
	}
	if err := c.step(); err != nil {
		c.State = StatePanicked
		c.LastFault = err
		log.Printf("thm: vm panicked: %v\n%s", err, c.DumpState())
		return err
	}
	c.Steps++
	return nil
}

func (c *CPU) step() error {
	if line, ok := c.pic.Poll(); ok {
		return c.enterInterrupt(line)
	}

	start := c.PC
	opByte, ok := c.fetchByte()
	if !ok {
		return &Fault{PC: start, Message: "fetch opcode: address unmapped"}
	}
	op := opcode.Decode(opByte)

	return c.execute(op, start)
}

// enterInterrupt pushes PC, then loads the handler address for line from
// the interrupt vector table (spec §4.7 step 1).
func (c *CPU) enterInterrupt(line byte) error {
	c.SP -= 4
	if !c.mem.SetWord(c.SP, c.PC) {
		return &Fault{PC: c.PC, Message: "interrupt entry: cannot push PC"}
	}
	addr, ok := c.mem.GetWord(memmap.IVStart + 4*uint32(line))
	if !ok {
		return &Fault{PC: c.PC, Message: fmt.Sprintf("interrupt entry: cannot read vector %d", line)}
	}
	c.PC = addr
	return nil
}

func (c *CPU) fetchByte() (byte, bool) {
	b, ok := c.mem.Get(c.PC)
	if ok {
		c.PC++
	}
	return b, ok
}

// skipHeader advances PC to the end of the 4-byte instruction header,
// regardless of how many operand bytes within it the op actually reads —
// the remaining bytes are filler (spec §4.7: "operand fetching reads the
// remaining 3 bytes of the header").
func (c *CPU) skipHeader(start uint32) {
	c.PC = start + 4
}

func (c *CPU) fetchWord() (uint32, bool) {
	w, ok := c.mem.GetWord(c.PC)
	if ok {
		c.PC += 4
	}
	return w, ok
}

func (c *CPU) updateFlags(v int32) {
	c.Flags.Zero = v == 0
	c.Flags.Negative = v < 0
}

// readReg and writeReg address the register named by its encoded
// ordinal: general registers 0..31, or one of the three special
// registers. The parser's grammar already accepts pc/sp/cs wherever a
// register operand appears, so the CPU honors all of them uniformly.
func (c *CPU) readReg(ord byte) int32 {
	switch {
	case ord == memmap.RegPC:
		return int32(c.PC)
	case ord == memmap.RegSP:
		return int32(c.SP)
	case ord == memmap.RegCS:
		return int32(c.CS)
	default:
		return c.Registers[ord]
	}
}

func (c *CPU) writeReg(ord byte, v int32) {
	switch {
	case ord == memmap.RegPC:
		c.PC = uint32(v)
	case ord == memmap.RegSP:
		c.SP = uint32(v)
	case ord == memmap.RegCS:
		c.CS = uint32(v)
	default:
		c.Registers[ord] = v
	}
}

func (c *CPU) execute(op opcode.Op, start uint32) error {
	switch op {
	case opcode.NOP:
		c.skipHeader(start)
		return nil

	case opcode.HALT:
		c.skipHeader(start)
		c.State = StateHalted
		return nil

	case opcode.PANIC:
		c.skipHeader(start)
		c.State = StatePanicked
		return &Fault{PC: start, Message: "PANIC instruction"}

	case opcode.RET:
		word, ok := c.mem.GetWord(c.SP)
		if !ok {
			return &Fault{PC: start, Message: "RET: cannot read return address"}
		}
		c.SP += 4
		c.PC = word
		return nil

	case opcode.INC, opcode.DEC:
		r, ok := c.fetchByte()
		if !ok {
			return &Fault{PC: start, Message: "cannot fetch register operand"}
		}
		c.skipHeader(start)
		v := c.readReg(r)
		if op == opcode.INC {
			v++
		} else {
			v--
		}
		c.writeReg(r, v)
		c.updateFlags(v)
		return nil

	case opcode.PUSH:
		r, ok := c.fetchByte()
		if !ok {
			return &Fault{PC: start, Message: "cannot fetch register operand"}
		}
		c.skipHeader(start)
		c.SP -= 4
		if !c.mem.SetWord(c.SP, uint32(c.readReg(r))) {
			return &Fault{PC: start, Message: "PUSH: cannot write memory"}
		}
		return nil

	case opcode.POP:
		r, ok := c.fetchByte()
		if !ok {
			return &Fault{PC: start, Message: "cannot fetch register operand"}
		}
		c.skipHeader(start)
		word, ok := c.mem.GetWord(c.SP)
		if !ok {
			return &Fault{PC: start, Message: "POP: cannot read memory"}
		}
		c.SP += 4
		c.writeReg(r, int32(word))
		c.updateFlags(int32(word))
		return nil

	case opcode.MOVRR, opcode.ADDRR, opcode.SUBRR, opcode.MULRR, opcode.CMP, opcode.STOR, opcode.LOAD, opcode.JA:
		return c.executeRR(op, start)

	case opcode.MOVRI, opcode.ADDRI, opcode.SUBRI, opcode.MULRI:
		return c.executeRI(op, start)

	case opcode.JADDR, opcode.JEQ, opcode.JNE, opcode.CALL:
		return c.executeAddr(op, start)

	case opcode.JIMM:
		c.skipHeader(start)
		word, ok := c.fetchWord()
		if !ok {
			return &Fault{PC: start, Message: "J: cannot fetch target"}
		}
		c.PC = word + c.CS
		return nil

	case opcode.XBM:
		i, ok := c.fetchByte()
		if !ok {
			return &Fault{PC: start, Message: "cannot fetch XBM slot"}
		}
		c.skipHeader(start)
		prev := c.bench[i]
		c.bench[i] = time.Now()
		if !prev.IsZero() {
			log.Printf("xbm %d: %s", i, c.bench[i].Sub(prev))
		}
		return nil

	default:
		c.State = StatePanicked
		return &Fault{PC: start, Message: fmt.Sprintf("unknown opcode 0x%02X", byte(op))}
	}
}

func (c *CPU) executeRR(op opcode.Op, start uint32) error {
	r0, ok0 := c.fetchByte()
	r1, ok1 := c.fetchByte()
	if !ok0 || !ok1 {
		return &Fault{PC: start, Message: "cannot fetch register operands"}
	}
	c.skipHeader(start)

	switch op {
	case opcode.MOVRR:
		v := c.readReg(r1)
		c.writeReg(r0, v)
		c.updateFlags(v)

	case opcode.ADDRR:
		v := c.readReg(r0) + c.readReg(r1)
		c.writeReg(r0, v)
		c.updateFlags(v)

	case opcode.SUBRR:
		v := c.readReg(r0) - c.readReg(r1)
		c.writeReg(r0, v)
		c.updateFlags(v)

	case opcode.MULRR:
		v := c.readReg(r0) * c.readReg(r1)
		c.writeReg(r0, v)
		c.updateFlags(v)

	case opcode.CMP:
		v0, v1 := c.readReg(r0), c.readReg(r1)
		c.Flags.Zero = v0 == v1
		c.Flags.Negative = v0 < v1

	case opcode.STOR:
		addr := uint32(c.readReg(r0))
		if !c.mem.SetWord(addr, uint32(c.readReg(r1))) {
			return &Fault{PC: start, Message: "STOR: cannot write memory"}
		}

	case opcode.LOAD:
		addr := uint32(c.readReg(r1))
		word, ok := c.mem.GetWord(addr)
		if !ok {
			return &Fault{PC: start, Message: "LOAD: cannot read memory"}
		}
		c.writeReg(r0, int32(word))
		c.updateFlags(int32(word))

	case opcode.JA:
		// Diverges from JADDR/JEQ/JNE/CALL: the target comes entirely
		// from the two registers, CS is not added.
		target := uint32(c.readReg(r0)) + uint32(c.readReg(r1))
		c.PC = target
	}
	return nil
}

func (c *CPU) executeRI(op opcode.Op, start uint32) error {
	r, ok := c.fetchByte()
	if !ok {
		return &Fault{PC: start, Message: "cannot fetch register operand"}
	}
	c.skipHeader(start)
	word, ok := c.fetchWord()
	if !ok {
		return &Fault{PC: start, Message: "cannot fetch immediate operand"}
	}
	imm := int32(word)

	var v int32
	switch op {
	case opcode.MOVRI:
		v = imm
	case opcode.ADDRI:
		v = c.readReg(r) + imm
	case opcode.SUBRI:
		v = c.readReg(r) - imm
	case opcode.MULRI:
		v = c.readReg(r) * imm
	}
	c.writeReg(r, v)
	c.updateFlags(v)
	return nil
}

func (c *CPU) executeAddr(op opcode.Op, start uint32) error {
	c.skipHeader(start)
	word, ok := c.fetchWord()
	if !ok {
		return &Fault{PC: start, Message: "cannot fetch address operand"}
	}
	target := word + c.CS

	switch op {
	case opcode.JADDR:
		c.PC = target

	case opcode.JEQ:
		if c.Flags.Zero {
			c.PC = target
		}

	case opcode.JNE:
		if !c.Flags.Zero {
			c.PC = target
		}

	case opcode.CALL:
		c.SP -= 4
		if !c.mem.SetWord(c.SP, c.PC) {
			return &Fault{PC: start, Message: "CALL: cannot write return address"}
		}
		c.PC = target
	}
	return nil
}
