// Package checker validates that every register operand in a parsed
// program names a register that exists on the target machine. Grounded on
// the original checker.rs: a registry of valid register names built from
// the configured general-register count plus the three special
// registers, checked against every IR/IRR/IRW instruction.
package checker

import (
	"fmt"

	"github.com/thoriumlang/thm/ast"
	"github.com/thoriumlang/thm/opcode"
)

// Check validates every register operand against a machine with
// registerCount general-purpose registers (r0..r{registerCount-1}); pc,
// sp and cs are always valid regardless of registerCount. It returns every
// violation found, not just the first.
func Check(nodes []ast.Node, registerCount int) []error {
	var errs []error

	valid := func(r ast.Register) bool {
		if r.Kind == ast.RegSpecial {
			return true
		}
		return r.Num >= 0 && r.Num < registerCount
	}

	check := func(r ast.Register) {
		if !valid(r) {
			errs = append(errs, fmt.Errorf("%s is not a valid register", r.Name))
		}
	}

	for _, node := range nodes {
		in, ok := node.(ast.Instruction)
		if !ok {
			continue
		}
		switch in.Op.Shape() {
		case opcode.ShapeIR:
			check(in.Reg1)
		case opcode.ShapeIRR:
			check(in.Reg1)
			check(in.Reg2)
		case opcode.ShapeIRW:
			check(in.Reg1)
		}
	}

	return errs
}
