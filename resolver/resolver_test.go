package resolver

import (
	"testing"

	"github.com/thoriumlang/thm/ast"
	"github.com/thoriumlang/thm/opcode"
)

func TestResolveSuccess(t *testing.T) {
	nodes := []ast.Node{
		ast.Label{Name: "label1"},
		ast.Instruction{Op: opcode.JEQ, Label: "label2"},
		ast.Label{Name: "label2"},
	}

	addresses, err := Resolve(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addresses["label1"] != 0 {
		t.Errorf("label1: got %d, want 0", addresses["label1"])
	}
	if addresses["label2"] != 8 {
		t.Errorf("label2: got %d, want 8", addresses["label2"])
	}
}

func TestResolveDuplicateLabel(t *testing.T) {
	nodes := []ast.Node{
		ast.Label{Name: "label1"},
		ast.Instruction{Op: opcode.NOP},
		ast.Label{Name: "label1"},
	}

	_, err := Resolve(nodes)
	if err == nil {
		t.Fatal("expected duplicate-label error")
	}
	if got, want := err.Error(), "label label1 used more than once"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveMissingLabel(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.JEQ, Label: "missing"},
	}

	_, err := Resolve(nodes)
	if err == nil {
		t.Fatal("expected missing-label error")
	}
	if got, want := err.Error(), "label missing is missing"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveIgnoresNonAddressShapes(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.NOP},
		ast.Instruction{Op: opcode.MOVRI, Imm: 5},
	}

	if _, err := Resolve(nodes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
