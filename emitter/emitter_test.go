package emitter

import (
	"testing"

	"github.com/thoriumlang/thm/ast"
	"github.com/thoriumlang/thm/opcode"
	"github.com/thoriumlang/thm/resolver"
)

func TestEmitForwardJump(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.JEQ, Label: "label2"},
		ast.Label{Name: "label2"},
	}

	addresses, err := resolver.Resolve(nodes)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}

	bytes := Emit(nodes, addresses)
	if len(bytes) != 8 {
		t.Fatalf("got %d bytes, want 8", len(bytes))
	}
	want := []byte{byte(opcode.JEQ), 0, 0, 0, 0, 0, 0, 8}
	for i := range want {
		if bytes[i] != want[i] {
			t.Fatalf("got %v, want %v", bytes, want)
		}
	}
}

func TestEmitNoOperand(t *testing.T) {
	nodes := []ast.Node{ast.Instruction{Op: opcode.NOP}}
	bytes := Emit(nodes, nil)
	want := []byte{byte(opcode.NOP), 0, 0, 0}
	if len(bytes) != 4 || bytes[0] != want[0] {
		t.Fatalf("got %v, want %v", bytes, want)
	}
}

func TestEmitRegReg(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{
			Op:   opcode.MOVRR,
			Reg1: ast.Register{Kind: ast.RegGeneral, Num: 2},
			Reg2: ast.Register{Kind: ast.RegGeneral, Num: 5},
		},
	}
	bytes := Emit(nodes, nil)
	want := []byte{byte(opcode.MOVRR), 2, 5, 0}
	for i := range want {
		if bytes[i] != want[i] {
			t.Fatalf("got %v, want %v", bytes, want)
		}
	}
}

func TestEmitRegImmediate(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.MOVRI, Reg1: ast.Register{Kind: ast.RegGeneral, Num: 1}, Imm: 0x01020304},
	}
	bytes := Emit(nodes, nil)
	want := []byte{byte(opcode.MOVRI), 1, 0, 0, 0x01, 0x02, 0x03, 0x04}
	if len(bytes) != 8 {
		t.Fatalf("got %d bytes, want 8", len(bytes))
	}
	for i := range want {
		if bytes[i] != want[i] {
			t.Fatalf("got %v, want %v", bytes, want)
		}
	}
}

func TestEmitSpecialRegister(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.PUSH, Reg1: ast.Register{Kind: ast.RegSpecial, Name: "sp"}},
	}
	bytes := Emit(nodes, nil)
	if bytes[1] != 254 {
		t.Fatalf("got register byte %d, want 254 (sp)", bytes[1])
	}
}

func TestEmitImmediateByte(t *testing.T) {
	nodes := []ast.Node{
		ast.Instruction{Op: opcode.XBM, Imm: 7},
	}
	bytes := Emit(nodes, nil)
	want := []byte{byte(opcode.XBM), 7, 0, 0}
	for i := range want {
		if bytes[i] != want[i] {
			t.Fatalf("got %v, want %v", bytes, want)
		}
	}
}
