// Package ast defines the parser's output unit, Node, and the register
// operand and instruction shapes it's built from. Variable bindings are
// resolved inline by the parser (spec §4.2, §9) and never appear here.
package ast

import (
	"github.com/thoriumlang/thm/opcode"
	"github.com/thoriumlang/thm/token"
)

// RegKind distinguishes a general-purpose register operand from one of the
// three fixed special registers.
type RegKind int

const (
	RegGeneral RegKind = iota
	RegSpecial
)

// Register is a register operand as written in source: its name (for
// diagnostics and the register checker) plus enough information to
// compute its encoded ordinal.
type Register struct {
	Name string // "r5", "pc", "sp", "cs"
	Kind RegKind
	Num  int // general-register ordinal (0..31); unused when Kind == RegSpecial
	Pos  token.Position
}

// Node is one element of a parsed program: a label or an instruction.
type Node interface {
	node()
}

// Label marks a position in the instruction stream with a name.
type Label struct {
	Name string
	Pos  token.Position
}

func (Label) node() {}

// Instruction is one assembled operation. Which fields are meaningful is
// determined by Op.Shape():
//
//	ShapeI   - none
//	ShapeIB  - Imm (as a byte)
//	ShapeIR  - Reg1
//	ShapeIRR - Reg1, Reg2
//	ShapeIW  - Imm
//	ShapeIRW - Reg1, Imm
//	ShapeIA  - Label
type Instruction struct {
	Op    opcode.Op
	Pos   token.Position
	Reg1  Register
	Reg2  Register
	Imm   uint32
	Label string
}

func (Instruction) node() {}

// Len returns the encoded length in bytes of the instruction.
func (i Instruction) Len() uint32 {
	return uint32(i.Op.Shape().Len())
}
