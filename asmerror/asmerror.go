// Package asmerror holds the shared error type for the assembler pipeline
// (lexer, parser, and the assemble package's combined register-check
// error; the resolver and checker return plain errors). Grounded on the teacher's
// parser/errors.go (Position, Error, ErrorList), generalized with a Kind
// tag matching spec.md §7's taxonomy.
package asmerror

import (
	"fmt"
	"strings"

	"github.com/thoriumlang/thm/token"
)

// Kind categorizes an assembler error.
type Kind int

const (
	Lex Kind = iota
	Parse
	Semantic
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex error"
	case Parse:
		return "parse error"
	case Semantic:
		return "semantic error"
	default:
		return "error"
	}
}

// Error is a single diagnostic with a source position.
type Error struct {
	Kind    Kind
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func New(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// List collects diagnostics produced across a pipeline stage.
type List struct {
	Errors []*Error
}

func (l *List) Add(err *Error) {
	l.Errors = append(l.Errors, err)
}

func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *List) Error() string {
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
