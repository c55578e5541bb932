// Package assemble wires the assembler stages — lex, parse, register
// check, resolve, emit — into a single entry point. Grounded on the original
// asm/main.rs: run each stage in order, halting the pipeline at the first
// stage that reports a failure (spec §7's propagation policy).
package assemble

import (
	"fmt"

	"github.com/thoriumlang/thm/asmerror"
	"github.com/thoriumlang/thm/checker"
	"github.com/thoriumlang/thm/emitter"
	"github.com/thoriumlang/thm/lexer"
	"github.com/thoriumlang/thm/parser"
	"github.com/thoriumlang/thm/resolver"
)

// Options configures the target machine the emitted image is checked
// against.
type Options struct {
	// RegisterCount is the number of general-purpose registers (r0..r{N-1})
	// the register checker accepts.
	RegisterCount int
}

// Assemble runs source through the full pipeline and returns the emitted
// byte image. It stops at the first stage that reports a diagnostic: a
// lex or parse error, a duplicate or missing label, or an invalid
// register reference.
func Assemble(source string, opts Options) ([]byte, error) {
	toks, lexErrs := lexer.All(source)
	if lexErrs.HasErrors() {
		return nil, lexErrs
	}

	nodes, parseErrs := parser.Parse(toks)
	if parseErrs.HasErrors() {
		return nil, parseErrs
	}

	if errs := checker.Check(nodes, opts.RegisterCount); len(errs) > 0 {
		return nil, joinErrors(errs)
	}

	addresses, err := resolver.Resolve(nodes)
	if err != nil {
		return nil, err
	}

	return emitter.Emit(nodes, addresses), nil
}

// joinErrors folds a register-checker violation list into a single error,
// matching the assembler's one-error-per-failing-stage contract.
func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := fmt.Sprintf("%d register errors:", len(errs))
	for _, e := range errs {
		msg += "\n  " + e.Error()
	}
	return &asmerror.Error{Kind: asmerror.Semantic, Message: msg}
}
