package flatten_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/flatten"
	"github.com/standardbeagle/asjs/internal/ir"
	th "github.com/standardbeagle/asjs/testhelpers"
)

// Spec scenario 1: `1 + 2 * 3` lowers to Multiply(2,3)=%t1; Add(1,%t1)=%t2,
// with the final op's result promoted to %result.
func TestFlattenAddMultiplyPrecedence(t *testing.T) {
	tree := th.NewTree(nil)
	expr := th.Binary(tree, ast.Add,
		th.Int(tree, 1),
		th.Binary(tree, ast.Multiply, th.Int(tree, 2), th.Int(tree, 3)))

	prog := flatten.Flatten(expr, nil)

	require.Len(t, prog.Operations, 2)

	mul := prog.Operations[0]
	assert.Equal(t, ir.OpMultiply, mul.Op)
	assert.Equal(t, int64(2), mul.LHS.IntVal.Value())
	assert.Equal(t, int64(3), mul.RHSVal.IntVal.Value())
	assert.Equal(t, "%t1", mul.Result.Name)

	add := prog.Operations[1]
	assert.Equal(t, ir.OpAdd, add.Op)
	assert.Equal(t, int64(1), add.LHS.IntVal.Value())
	assert.Equal(t, "%t1", add.RHSVal.Name)
	assert.Equal(t, "%result", add.Result.Name)
	assert.Equal(t, ir.DataExtern, add.Result.Kind)

	v, ok := prog.Variables["%result"]
	require.True(t, ok)
	assert.Equal(t, ir.VariableExtern, v.Kind)
}

// Spec scenario 2: `(10 - 4) / 2` is a single nested binary chain.
func TestFlattenParenthesizedDivide(t *testing.T) {
	tree := th.NewTree(nil)
	expr := th.Binary(tree, ast.Divide,
		th.Binary(tree, ast.Subtract, th.Int(tree, 10), th.Int(tree, 4)),
		th.Int(tree, 2))

	prog := flatten.Flatten(expr, nil)

	require.Len(t, prog.Operations, 2)
	assert.Equal(t, ir.OpSubtract, prog.Operations[0].Op)
	assert.Equal(t, ir.OpDivide, prog.Operations[1].Op)
	assert.Equal(t, "%result", prog.Operations[1].Result.Name)
}

// Spec scenario 3: `5 ** 3` emits a Power op.
func TestFlattenPower(t *testing.T) {
	tree := th.NewTree(nil)
	expr := th.Binary(tree, ast.Power, th.Int(tree, 5), th.Int(tree, 3))

	prog := flatten.Flatten(expr, nil)

	require.Len(t, prog.Operations, 1)
	assert.Equal(t, ir.OpPower, prog.Operations[0].Op)
	assert.Equal(t, int64(5), prog.Operations[0].LHS.IntVal.Value())
	assert.Equal(t, int64(3), prog.Operations[0].RHSVal.IntVal.Value())
}

// Spec scenario 4: `var a = true ? 11 : 22;` with a declared extern.
func TestFlattenExternConditionalDeclaration(t *testing.T) {
	tree := th.NewTree(nil)
	cond := th.Conditional(tree, th.Bool(tree, true), th.Int(tree, 11), th.Int(tree, 22))
	stmt := th.VarStatement(tree, th.Declarator(tree, "a", true, cond))

	prog := flatten.Flatten(stmt, nil)

	v, ok := prog.Variables["a"]
	require.True(t, ok)
	assert.Equal(t, ir.VariableExtern, v.Kind)

	var sawIfFalse, sawAssignToA bool
	for _, op := range prog.Operations {
		if op.Op == ir.OpIfFalse {
			sawIfFalse = true
		}
		if op.Op == ir.OpAssignment && op.LHS.Name == "a" {
			sawAssignToA = true
		}
	}
	assert.True(t, sawIfFalse, "expected an IfFalse op lowering the conditional")
	assert.True(t, sawAssignToA, "expected the conditional's temp assigned into extern variable a")

	last := prog.Operations[len(prog.Operations)-1]
	assert.Equal(t, "%result", last.Result.Name)
	assert.Equal(t, ir.DataExtern, last.Result.Kind)
}

// A semantic pass's Instance link (ast.Node.SetInstance) takes priority
// over this pass's own declaration-order tracking, since it may point at a
// declaration this walk never saw (a forward reference a real name
// resolver already settled).
func TestFlattenIdentifierResolvesThroughSemanticInstance(t *testing.T) {
	tree := th.NewTree(nil)
	decl := th.Declarator(tree, "counter", true, nil)
	ident := th.Ident(tree, "counter")
	ident.SetInstance(decl)

	stmt := th.VarStatement(tree, th.Declarator(tree, "b", false, ident))
	prog := flatten.Flatten(stmt, nil)

	require.Len(t, prog.Operations, 1)
	assign := prog.Operations[0]
	assert.Equal(t, "counter", assign.RHSVal.Name)
	assert.Equal(t, ir.DataExtern, assign.RHSVal.Kind, "decl's Extern attribute should resolve counter as extern")
}

// A semantic pass's TypeNode link (ast.Node.SetTypeNode) supplies a
// variable's type when there's no initializer to infer it from.
func TestFlattenDeclaratorUsesTypeNodeWhenNoInitializer(t *testing.T) {
	tree := th.NewTree(nil)
	typeMarker := th.Float(tree, 0) // stands in for a resolved FloatingPoint type
	decl := th.Declarator(tree, "x", true, nil)
	decl.Child(0).SetTypeNode(typeMarker)
	stmt := th.VarStatement(tree, decl)

	prog := flatten.Flatten(stmt, nil)

	v, ok := prog.Variables["x"]
	require.True(t, ok)
	assert.Equal(t, ir.TypeFloatingPoint, v.Type)
}
