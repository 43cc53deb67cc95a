// Package testhelpers builds small ast.Tree/ir.Program/archive fixtures for
// tests across the module, replacing hand-written tree.New/AppendChild
// chains with names that read like the expression they construct.
package testhelpers

import (
	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/literal"
	"github.com/standardbeagle/asjs/internal/position"
)

// NewTree returns a fresh, empty ast.Tree reporting through sink (nil falls
// back to a private sink so tests don't share counters).
func NewTree(sink *diag.Sink) *ast.Tree {
	if sink == nil {
		sink = diag.NewSink(diag.Trace, nil)
	}
	return ast.NewTree(sink)
}

func leaf(t *ast.Tree, k ast.Kind) *ast.Node {
	return t.New(k, position.Position{})
}

// Int returns a detached Integer leaf node.
func Int(t *ast.Tree, v int64) *ast.Node {
	n := leaf(t, ast.Integer)
	n.SetInteger(literal.NewInteger(v))
	return n
}

// Float returns a detached FloatingPoint leaf node.
func Float(t *ast.Tree, v float64) *ast.Node {
	n := leaf(t, ast.FloatingPoint)
	n.SetFloat(literal.NewFloat(v))
	return n
}

// Str returns a detached String leaf node.
func Str(t *ast.Tree, v string) *ast.Node {
	n := leaf(t, ast.String)
	n.SetString(v)
	return n
}

// Bool returns a detached True or False leaf node.
func Bool(t *ast.Tree, v bool) *ast.Node {
	if v {
		return leaf(t, ast.True)
	}
	return leaf(t, ast.False)
}

// Ident returns a detached Identifier leaf node named name.
func Ident(t *ast.Tree, name string) *ast.Node {
	n := leaf(t, ast.Identifier)
	n.SetString(name)
	return n
}

// Binary returns a detached node of kind k with lhs and rhs as its two
// children (e.g. Binary(t, ast.Add, Int(t,1), Int(t,2))).
func Binary(t *ast.Tree, k ast.Kind, lhs, rhs *ast.Node) *ast.Node {
	n := leaf(t, k)
	n.AppendChild(lhs)
	n.AppendChild(rhs)
	return n
}

// Unary returns a detached node of kind k with operand as its only child.
func Unary(t *ast.Tree, k ast.Kind, operand *ast.Node) *ast.Node {
	n := leaf(t, k)
	n.AppendChild(operand)
	return n
}

// Conditional returns a detached Conditional node `cond ? whenTrue :
// whenFalse`.
func Conditional(t *ast.Tree, cond, whenTrue, whenFalse *ast.Node) *ast.Node {
	n := leaf(t, ast.Conditional)
	n.AppendChild(cond)
	n.AppendChild(whenTrue)
	n.AppendChild(whenFalse)
	return n
}

// Member returns a detached Array node representing `object.property`
// (property is an Identifier naming the member, per the flattener's member
// access lowering).
func Member(t *ast.Tree, object *ast.Node, property string) *ast.Node {
	n := leaf(t, ast.Array)
	n.AppendChild(object)
	n.AppendChild(Ident(t, property))
	return n
}

// Call returns a detached Call node invoking callee with args.
func Call(t *ast.Tree, callee *ast.Node, args ...*ast.Node) *ast.Node {
	n := leaf(t, ast.Call)
	n.AppendChild(callee)
	for _, a := range args {
		n.AppendChild(a)
	}
	return n
}

// Declarator returns a detached Variable node declaring name, optionally
// extern, with an optional initializer (pass nil for none).
func Declarator(t *ast.Tree, name string, extern bool, init *ast.Node) *ast.Node {
	n := leaf(t, ast.Variable)
	n.AppendChild(Ident(t, name))
	if init != nil {
		n.AppendChild(init)
	}
	if extern {
		n.SetAttribute(ast.Extern)
	}
	return n
}

// VarStatement returns a detached Var node wrapping one or more Variable
// declarators.
func VarStatement(t *ast.Tree, declarators ...*ast.Node) *ast.Node {
	n := leaf(t, ast.Var)
	for _, d := range declarators {
		n.AppendChild(d)
	}
	return n
}

// Program returns a detached Program node wrapping statements in order,
// suitable as flatten.Flatten's root.
func Program(t *ast.Tree, statements ...*ast.Node) *ast.Node {
	n := leaf(t, ast.Program)
	for _, s := range statements {
		n.AppendChild(s)
	}
	return n
}
