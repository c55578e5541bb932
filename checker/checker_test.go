package checker

import (
	"testing"

	"github.com/thoriumlang/thm/ast"
	"github.com/thoriumlang/thm/opcode"
)

func TestRegisterInvalidIR(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.INC, Reg1: ast.Register{Name: "r30", Num: 30}},
	}

	errs := Check(nodes, 16)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
}

func TestRegisterInvalidIRR(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{
			Op:   opcode.MOVRR,
			Reg1: ast.Register{Name: "r30", Num: 30},
			Reg2: ast.Register{Name: "r31", Num: 31},
		},
	}

	errs := Check(nodes, 16)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
}

func TestRegisterInvalidIRW(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.MOVRI, Reg1: ast.Register{Name: "r30", Num: 30}, Imm: 42},
	}

	errs := Check(nodes, 16)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
}

func TestSpecialRegistersAlwaysValid(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.PUSH, Reg1: ast.Register{Name: "pc", Kind: ast.RegSpecial}},
		ast.Instruction{Op: opcode.PUSH, Reg1: ast.Register{Name: "sp", Kind: ast.RegSpecial}},
		ast.Instruction{Op: opcode.PUSH, Reg1: ast.Register{Name: "cs", Kind: ast.RegSpecial}},
	}

	errs := Check(nodes, 0)
	if len(errs) != 0 {
		t.Fatalf("got %d errors, want 0: %v", len(errs), errs)
	}
}

func TestRegisterInRangeIsValid(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.INC, Reg1: ast.Register{Name: "r3", Num: 3}},
	}

	errs := Check(nodes, 16)
	if len(errs) != 0 {
		t.Fatalf("got %d errors, want 0: %v", len(errs), errs)
	}
}

func TestNonRegisterShapesAreIgnored(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.NOP},
		ast.Instruction{Op: opcode.JEQ, Label: "x"},
	}

	errs := Check(nodes, 0)
	if len(errs) != 0 {
		t.Fatalf("got %d errors, want 0: %v", len(errs), errs)
	}
}
