// Package parser turns a thm token stream into a list of ast.Node values:
// labels and instructions. Variables ($name = <int|addr>) are a small
// macro facility resolved entirely inside the parser (spec §4.2, §9) and
// never surface as nodes.
//
// Grounded on the teacher's recursive-descent parser.go (token-kind
// dispatch keyed on the mnemonic, operand-count/kind checks producing
// *Error with position) adapted to thm's fixed per-mnemonic grammar table.
package parser

import (
	"github.com/thoriumlang/thm/asmerror"
	"github.com/thoriumlang/thm/ast"
	"github.com/thoriumlang/thm/opcode"
	"github.com/thoriumlang/thm/token"
)

type varBinding struct {
	isAddress bool
	intValue  uint32
	addrName  string
}

// Parser consumes a token slice and produces ast.Node values.
type Parser struct {
	toks []token.Token
	pos  int
	vars map[string]varBinding
	errs asmerror.List
}

// New creates a Parser over a complete token stream (as produced by
// lexer.All), including the trailing EOF token.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, vars: map[string]varBinding{}}
}

// Parse runs the parser to completion and returns the parsed nodes and any
// accumulated errors.
func Parse(toks []token.Token) ([]ast.Node, *asmerror.List) {
	p := New(toks)
	return p.parseProgram(), &p.errs
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) next() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errf(pos token.Position, format string, args ...any) {
	p.errs.Add(asmerror.New(asmerror.Parse, pos, format, args...))
}

func (p *Parser) expectEOL() {
	t := p.cur()
	if t.Kind == token.EOL || t.Kind == token.EOF {
		p.next()
		return
	}
	p.errf(t.Pos, "missing EOL, got %s", t.Kind)
	// Recover by skipping to the next EOL/EOF so one bad line does not
	// cascade into spurious errors for the rest of the program.
	for p.cur().Kind != token.EOL && p.cur().Kind != token.EOF {
		p.next()
	}
	if p.cur().Kind == token.EOL {
		p.next()
	}
}

func (p *Parser) expectComma() bool {
	t := p.cur()
	if t.Kind != token.Comma {
		p.errf(t.Pos, "missing comma, got %s", t.Kind)
		return false
	}
	p.next()
	return true
}

func (p *Parser) parseProgram() []ast.Node {
	var nodes []ast.Node
	sectionSeen := false

	for {
		t := p.cur()
		switch t.Kind {
		case token.EOF:
			return nodes

		case token.EOL:
			p.next()

		case token.Section:
			p.next()
			if sectionSeen {
				// A second section ends the instruction stream (spec §4.2).
				return nodes
			}
			sectionSeen = true

		case token.Label:
			p.next()
			nodes = append(nodes, ast.Label{Name: t.Text, Pos: t.Pos})
			p.expectEOL()

		case token.VarName:
			p.parseVarBinding()

		case token.Mnemonic:
			if n, ok := p.parseInstruction(t); ok {
				nodes = append(nodes, n)
			}

		default:
			p.errf(t.Pos, "unexpected token %s", t.Kind)
			p.next()
		}
	}
}

func (p *Parser) parseVarBinding() {
	nameTok := p.next() // VarName
	eq := p.next()
	if eq.Kind != token.Equal {
		p.errf(eq.Pos, "expected '=' after $%s, got %s", nameTok.Text, eq.Kind)
		p.expectEOL()
		return
	}
	valTok := p.next()
	switch valTok.Kind {
	case token.Integer:
		p.vars[nameTok.Text] = varBinding{intValue: valTok.IntValue}
	case token.Address:
		p.vars[nameTok.Text] = varBinding{isAddress: true, addrName: valTok.Text}
	default:
		p.errf(valTok.Pos, "expected integer or address literal for $%s, got %s", nameTok.Text, valTok.Kind)
	}
	p.expectEOL()
}

func (p *Parser) resolveIntVar(name string, pos token.Position) (uint32, bool) {
	b, ok := p.vars[name]
	if !ok {
		p.errf(pos, "undefined variable $%s", name)
		return 0, false
	}
	if b.isAddress {
		p.errf(pos, "$%s is bound to an address, not an integer", name)
		return 0, false
	}
	return b.intValue, true
}

func (p *Parser) resolveAddrVar(name string, pos token.Position) (string, bool) {
	b, ok := p.vars[name]
	if !ok {
		p.errf(pos, "undefined variable $%s", name)
		return "", false
	}
	if !b.isAddress {
		p.errf(pos, "$%s is bound to an integer, not an address", name)
		return "", false
	}
	return b.addrName, true
}

// parseIntOperand consumes an Integer or VarName token and returns its
// resolved 32-bit value.
func (p *Parser) parseIntOperand() (uint32, bool) {
	t := p.next()
	switch t.Kind {
	case token.Integer:
		return t.IntValue, true
	case token.VarName:
		return p.resolveIntVar(t.Text, t.Pos)
	default:
		p.errf(t.Pos, "expected an integer operand, got %s", t.Kind)
		return 0, false
	}
}

// parseAddrOperand consumes an Address or VarName token and returns the
// referenced label name.
func (p *Parser) parseAddrOperand() (string, bool) {
	t := p.next()
	switch t.Kind {
	case token.Address:
		return t.Text, true
	case token.VarName:
		return p.resolveAddrVar(t.Text, t.Pos)
	default:
		p.errf(t.Pos, "expected an address operand, got %s", t.Kind)
		return "", false
	}
}

func (p *Parser) parseRegister() (ast.Register, bool) {
	t := p.next()
	switch t.Kind {
	case token.Register:
		return ast.Register{Name: registerName(t.RegNum), Kind: ast.RegGeneral, Num: t.RegNum, Pos: t.Pos}, true
	case token.Identifier:
		switch t.Text {
		case "pc", "sp", "cs":
			return ast.Register{Name: t.Text, Kind: ast.RegSpecial, Pos: t.Pos}, true
		default:
			p.errf(t.Pos, "expected a register, got identifier %q", t.Text)
			return ast.Register{}, false
		}
	default:
		p.errf(t.Pos, "expected a register operand, got %s", t.Kind)
		return ast.Register{}, false
	}
}

func registerName(n int) string {
	const digits = "0123456789"
	if n < 10 {
		return "r" + string(digits[n])
	}
	return "r" + string(digits[n/10]) + string(digits[n%10])
}

var noOperandOps = map[string]opcode.Op{
	"NOP":   opcode.NOP,
	"HALT":  opcode.HALT,
	"PANIC": opcode.PANIC,
	"RET":   opcode.RET,
}

var regOnlyOps = map[string]opcode.Op{
	"INC":  opcode.INC,
	"DEC":  opcode.DEC,
	"PUSH": opcode.PUSH,
	"POP":  opcode.POP,
}

var regRegOps = map[string]opcode.Op{
	"CMP":  opcode.CMP,
	"STOR": opcode.STOR,
	"LOAD": opcode.LOAD,
	"JA":   opcode.JA,
}

var addrOnlyOps = map[string]opcode.Op{
	"JEQ":  opcode.JEQ,
	"JNE":  opcode.JNE,
	"CALL": opcode.CALL,
}

// rrOrRiOps maps a mnemonic to its register-register and register-
// immediate opcode variants: MOV, ADD, SUB, MUL.
var rrOrRiOps = map[string][2]opcode.Op{
	"MOV": {opcode.MOVRR, opcode.MOVRI},
	"ADD": {opcode.ADDRR, opcode.ADDRI},
	"SUB": {opcode.SUBRR, opcode.SUBRI},
	"MUL": {opcode.MULRR, opcode.MULRI},
}

func (p *Parser) parseInstruction(mnem token.Token) (ast.Node, bool) {
	p.next() // consume mnemonic
	name := mnem.Text

	if op, ok := noOperandOps[name]; ok {
		p.expectEOL()
		return ast.Instruction{Op: op, Pos: mnem.Pos}, true
	}

	if op, ok := regOnlyOps[name]; ok {
		reg, regOK := p.parseRegister()
		p.expectEOL()
		if !regOK {
			return nil, false
		}
		return ast.Instruction{Op: op, Pos: mnem.Pos, Reg1: reg}, true
	}

	if op, ok := regRegOps[name]; ok {
		r1, ok1 := p.parseRegister()
		p.expectComma()
		r2, ok2 := p.parseRegister()
		p.expectEOL()
		if !ok1 || !ok2 {
			return nil, false
		}
		return ast.Instruction{Op: op, Pos: mnem.Pos, Reg1: r1, Reg2: r2}, true
	}

	if op, ok := addrOnlyOps[name]; ok {
		label, labelOK := p.parseAddrOperand()
		p.expectEOL()
		if !labelOK {
			return nil, false
		}
		return ast.Instruction{Op: op, Pos: mnem.Pos, Label: label}, true
	}

	if name == "J" {
		t := p.cur()
		var node ast.Instruction
		ok := true
		switch t.Kind {
		case token.Address, token.VarName:
			var label string
			label, ok = p.parseAddrOperand()
			node = ast.Instruction{Op: opcode.JADDR, Pos: mnem.Pos, Label: label}
		case token.Integer:
			var imm uint32
			imm, ok = p.parseIntOperand()
			node = ast.Instruction{Op: opcode.JIMM, Pos: mnem.Pos, Imm: imm}
		default:
			p.errf(t.Pos, "expected an address or integer operand for J, got %s", t.Kind)
			p.next()
			ok = false
		}
		p.expectEOL()
		if !ok {
			return nil, false
		}
		return node, true
	}

	if ops, ok := rrOrRiOps[name]; ok {
		r1, ok1 := p.parseRegister()
		p.expectComma()
		t := p.cur()
		var node ast.Instruction
		ok2 := true
		switch t.Kind {
		case token.Register, token.Identifier:
			var r2 ast.Register
			r2, ok2 = p.parseRegister()
			node = ast.Instruction{Op: ops[0], Pos: mnem.Pos, Reg1: r1, Reg2: r2}
		case token.Integer, token.VarName:
			var imm uint32
			imm, ok2 = p.parseIntOperand()
			node = ast.Instruction{Op: ops[1], Pos: mnem.Pos, Reg1: r1, Imm: imm}
		default:
			p.errf(t.Pos, "expected a register, integer, or variable operand for %s, got %s", name, t.Kind)
			p.next()
			ok2 = false
		}
		p.expectEOL()
		if !ok1 || !ok2 {
			return nil, false
		}
		return node, true
	}

	if name == "XBM" {
		imm, ok := p.parseIntOperand()
		p.expectEOL()
		if !ok {
			return nil, false
		}
		if imm > 255 {
			p.errf(mnem.Pos, "immediate %d out of range for XBM (0..255)", imm)
			return nil, false
		}
		return ast.Instruction{Op: opcode.XBM, Pos: mnem.Pos, Imm: imm}, true
	}

	p.errf(mnem.Pos, "unknown mnemonic %q", name)
	// Recover by skipping to EOL so subsequent lines still get parsed.
	for p.cur().Kind != token.EOL && p.cur().Kind != token.EOF {
		p.next()
	}
	if p.cur().Kind == token.EOL {
		p.next()
	}
	return nil, false
}
