// Package lexer turns thm assembly source into a stream of positioned
// tokens. Grounded on the teacher's character-cursor lexer
// (parser/lexer.go): a rune cursor with line/column tracking, a
// NextToken method, and an accumulated error list that does not stop
// iteration.
package lexer

import (
	"strconv"
	"strings"

	"github.com/thoriumlang/thm/asmerror"
	"github.com/thoriumlang/thm/token"
)

// Lexer tokenizes thm assembly source.
type Lexer struct {
	input  string
	pos    int // byte offset of the next unread rune
	line   int
	column int
	ch     byte
	errs   asmerror.List
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.advance()
	return l
}

// Errors returns the errors accumulated so far.
func (l *Lexer) Errors() *asmerror.List {
	return &l.errs
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
	l.column++
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.column}
}

func (l *Lexer) newline() {
	l.line++
	l.column = 0
}

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isLower(b byte) bool      { return b >= 'a' && b <= 'z' }
func isUpper(b byte) bool      { return b >= 'A' && b <= 'Z' }
func isHexDigit(b byte) bool   { return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') }
func isIdentStart(b byte) bool { return isLower(b) || isUpper(b) }
func isIdentChar(b byte) bool  { return isLower(b) || isUpper(b) || isDigit(b) || b == '_' }

// NextToken returns the next token in the stream. At end of input it
// returns an EOF token forever. Lex errors are appended to Errors(); they
// do not stop the token stream — the consumer decides what to do with a
// partial or errored program.
func (l *Lexer) NextToken() token.Token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.advance()
	}

	pos := l.currentPos()

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.EOF, Pos: pos}

	case l.ch == '\n':
		l.advance()
		l.newline()
		return token.Token{Kind: token.EOL, Pos: pos}

	case l.ch == '/' && l.peek() == '/':
		for l.ch != '\n' && l.ch != 0 {
			l.advance()
		}
		if l.ch == '\n' {
			l.advance()
			l.newline()
		}
		return token.Token{Kind: token.EOL, Pos: pos}

	case l.ch == '/':
		l.errs.Add(asmerror.New(asmerror.Lex, pos, "lone '/' is not a valid token"))
		l.advance()
		return l.NextToken()

	case l.ch == ',':
		l.advance()
		return token.Token{Kind: token.Comma, Pos: pos}

	case l.ch == '=':
		l.advance()
		return token.Token{Kind: token.Equal, Pos: pos}

	case l.ch == '.':
		l.advance()
		name := l.readIdent()
		return token.Token{Kind: token.Section, Pos: pos, Text: name}

	case l.ch == ':':
		l.advance()
		name := l.readIdent()
		return token.Token{Kind: token.Label, Pos: pos, Text: name}

	case l.ch == '@':
		l.advance()
		name := l.readIdent()
		return token.Token{Kind: token.Address, Pos: pos, Text: name}

	case l.ch == '$':
		l.advance()
		name := l.readIdent()
		return token.Token{Kind: token.VarName, Pos: pos, Text: name}

	case l.ch == 'r' && isDigit(l.peek()):
		l.advance()
		digits := l.readDigits(isDigit)
		n, _ := strconv.Atoi(digits)
		if n > 31 {
			l.errs.Add(asmerror.New(asmerror.Lex, pos, "register r%s is out of range (max r31)", digits))
		}
		return token.Token{Kind: token.Register, Pos: pos, RegNum: n}

	case l.ch == 'x' && isHexDigit(l.peek()):
		l.advance()
		digits := l.readDigits(func(b byte) bool { return isHexDigit(b) || b == '_' })
		v, err := strconv.ParseUint(strings.ReplaceAll(digits, "_", ""), 16, 32)
		if err != nil {
			l.errs.Add(asmerror.New(asmerror.Lex, pos, "malformed hex integer 'x%s': %v", digits, err))
		}
		return token.Token{Kind: token.Integer, Pos: pos, IntValue: uint32(v)}

	case l.ch == 'b' && (l.peek() == '0' || l.peek() == '1' || l.peek() == '_'):
		l.advance()
		digits := l.readDigits(func(b byte) bool { return b == '0' || b == '1' || b == '_' })
		v, err := strconv.ParseUint(strings.ReplaceAll(digits, "_", ""), 2, 32)
		if err != nil {
			l.errs.Add(asmerror.New(asmerror.Lex, pos, "malformed binary integer 'b%s': %v", digits, err))
		}
		return token.Token{Kind: token.Integer, Pos: pos, IntValue: uint32(v)}

	case isDigit(l.ch):
		digits := l.readDigits(func(b byte) bool { return isDigit(b) || b == '_' })
		v, err := strconv.ParseUint(strings.ReplaceAll(digits, "_", ""), 10, 32)
		if err != nil {
			l.errs.Add(asmerror.New(asmerror.Lex, pos, "malformed decimal integer '%s': %v", digits, err))
		}
		return token.Token{Kind: token.Integer, Pos: pos, IntValue: uint32(v)}

	case isUpper(l.ch):
		name := l.readMnemonic()
		return token.Token{Kind: token.Mnemonic, Pos: pos, Text: name}

	case isLower(l.ch):
		name := l.readIdent()
		return token.Token{Kind: token.Identifier, Pos: pos, Text: name}

	default:
		bad := l.ch
		l.errs.Add(asmerror.New(asmerror.Lex, pos, "unexpected character %q", bad))
		l.advance()
		return l.NextToken()
	}
}

func (l *Lexer) readIdent() string {
	start := l.pos - 1
	if !isIdentStart(l.ch) {
		l.errs.Add(asmerror.New(asmerror.Lex, l.currentPos(), "expected identifier, got %q", l.ch))
		return ""
	}
	l.advance()
	for isIdentChar(l.ch) {
		l.advance()
	}
	return l.input[start : l.pos-1]
}

func (l *Lexer) readMnemonic() string {
	start := l.pos - 1
	for isUpper(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.advance()
	}
	return l.input[start : l.pos-1]
}

func (l *Lexer) readDigits(accept func(byte) bool) string {
	start := l.pos - 1
	for accept(l.ch) {
		l.advance()
	}
	return l.input[start : l.pos-1]
}

// All tokenizes the full input and returns every token including the
// trailing EOF.
func All(input string) ([]token.Token, *asmerror.List) {
	l := New(input)
	var toks []token.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l.Errors()
}
