// Package emitter walks a parsed, resolved program and produces the
// bytecode image. Grounded on the original emitter.rs: one pass over the
// node list, emitting each instruction's opcode byte plus its shape's
// operand bytes, with addresses and multi-byte immediates written
// big-endian.
package emitter

import (
	"encoding/binary"

	"github.com/thoriumlang/thm/ast"
	"github.com/thoriumlang/thm/memmap"
	"github.com/thoriumlang/thm/opcode"
)

// Emit encodes nodes into a byte image, resolving address operands through
// addresses (as produced by resolver.Resolve). Label nodes contribute no
// bytes; every Instruction contributes its shape's fixed length.
func Emit(nodes []ast.Node, addresses map[string]uint32) []byte {
	var out []byte

	for _, node := range nodes {
		in, ok := node.(ast.Instruction)
		if !ok {
			continue
		}

		switch in.Op.Shape() {
		case opcode.ShapeI:
			out = append(out, byte(in.Op), 0, 0, 0)

		case opcode.ShapeIB:
			out = append(out, byte(in.Op), byte(in.Imm), 0, 0)

		case opcode.ShapeIR:
			out = append(out, byte(in.Op), regByte(in.Reg1), 0, 0)

		case opcode.ShapeIRR:
			out = append(out, byte(in.Op), regByte(in.Reg1), regByte(in.Reg2), 0)

		case opcode.ShapeIW:
			out = append(out, byte(in.Op), 0, 0, 0)
			out = appendWord(out, in.Imm)

		case opcode.ShapeIRW:
			out = append(out, byte(in.Op), regByte(in.Reg1), 0, 0)
			out = appendWord(out, in.Imm)

		case opcode.ShapeIA:
			out = append(out, byte(in.Op), 0, 0, 0)
			out = appendWord(out, addresses[in.Label])
		}
	}

	return out
}

func appendWord(out []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

// regByte returns the encoded ordinal for a register operand: pc/sp/cs map
// to the fixed special-register numbers, general registers to their
// declared ordinal (spec §3).
func regByte(r ast.Register) byte {
	if r.Kind == ast.RegSpecial {
		switch r.Name {
		case "pc":
			return memmap.RegPC
		case "sp":
			return memmap.RegSP
		case "cs":
			return memmap.RegCS
		}
	}
	return byte(r.Num)
}
