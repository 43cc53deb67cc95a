// Package semantic declares the interfaces the out-of-scope semantic
// compiler satisfies (spec.md §1: "the core consumes its type_node,
// instance, and attribute outputs"). No implementation lives here: name
// resolution and type inference belong to the external parser/semantic
// compiler pipeline, not this module. internal/flatten consults the
// cross-links these interfaces populate (ast.Node.Instance/TypeNode) when
// present and falls back to its own declaration-order heuristics when not,
// so a tree built without a real semantic pass (every testhelpers fixture,
// today) still flattens correctly.
package semantic

import "github.com/standardbeagle/asjs/internal/ast"

// NameResolver binds each Identifier/VIdentifier node's Instance
// (ast.Node.SetInstance) to the declaration node it refers to.
type NameResolver interface {
	ResolveNames(root *ast.Node) error
}

// TypeResolver binds each expression node's TypeNode (ast.Node.SetTypeNode)
// to the node whose Kind describes its resolved type (spec.md's type_node
// cross-link; internal/flatten.varTypeFor already maps a literal Kind to
// an ir.VariableType, so a TypeResolver only needs to point at a node of
// the right kind, not build a separate type representation).
type TypeResolver interface {
	InferTypes(root *ast.Node) error
}

// Pass composes both halves of semantic analysis, run in the order spec.md
// implies: name resolution before type inference, since a type often
// depends on what an identifier resolves to.
type Pass interface {
	NameResolver
	TypeResolver
}

// Identity is a no-op Pass. It lets callers (cmd/asjsc, tests) run the
// full pipeline without a real semantic compiler wired in: every node's
// Instance and TypeNode stay unset, and internal/flatten falls back to its
// own heuristics exactly as it does today.
type Identity struct{}

func (Identity) ResolveNames(root *ast.Node) error { return nil }
func (Identity) InferTypes(root *ast.Node) error   { return nil }
