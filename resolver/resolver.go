// Package resolver assigns byte offsets to labels and checks that every
// address-shaped instruction references a label that exists. Grounded on
// the original address_resolver.rs: one left-to-right pass to build the
// label->offset map, then a second pass to validate IA-shape references.
package resolver

import (
	"fmt"

	"github.com/thoriumlang/thm/ast"
	"github.com/thoriumlang/thm/opcode"
)

// Resolve walks nodes in order, assigning each label the byte offset of the
// instruction that follows it, and returns the resulting label->offset map.
// It reports an error if a label is defined more than once or if an
// address-shaped instruction references a label that is never defined.
func Resolve(nodes []ast.Node) (map[string]uint32, error) {
	addresses := make(map[string]uint32)

	var position uint32
	for _, node := range nodes {
		switch n := node.(type) {
		case ast.Instruction:
			position += n.Len()
		case ast.Label:
			if _, ok := addresses[n.Name]; ok {
				return nil, fmt.Errorf("label %s used more than once", n.Name)
			}
			addresses[n.Name] = position
		}
	}

	for _, node := range nodes {
		in, ok := node.(ast.Instruction)
		if !ok || in.Op.Shape() != opcode.ShapeIA {
			continue
		}
		if _, ok := addresses[in.Label]; !ok {
			return nil, fmt.Errorf("label %s is missing", in.Label)
		}
	}

	return addresses, nil
}
