// Package flatten lowers an ast.Node expression/statement tree into the
// flat three-address ir.Program the build file and emitter consume
// (spec.md §4.3 "Flattener").
package flatten

import (
	"strconv"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/ir"
)

// Flattener walks an AST and accumulates ir.Operations into a Program.
// A Flattener is single-use: call Flatten (or FlattenExpression) once.
type Flattener struct {
	prog *ir.Program
	sink *diag.Sink

	tempCount  int
	labelCount int

	declKind map[string]ir.DataKind

	lastResult   ir.Data
	lastResultOK bool
	lastResultOp int
}

// New returns a Flattener reporting diagnostics through sink (diag.Default
// if nil).
func New(sink *diag.Sink) *Flattener {
	if sink == nil {
		sink = diag.Default
	}
	return &Flattener{
		prog:     ir.NewProgram(),
		sink:     sink,
		declKind: make(map[string]ir.DataKind),
		lastResultOp: -1,
	}
}

// Flatten lowers root, a Program/DirectiveList/List of statements or a bare
// expression, into a Program. The final statement's result is renamed
// "%result" and promoted to an extern variable, per spec.md §4.3.
func Flatten(root *ast.Node, sink *diag.Sink) *ir.Program {
	f := New(sink)
	f.flattenStatements(root)
	f.promoteFinalResult()
	return f.prog
}

func (f *Flattener) flattenStatements(n *ast.Node) {
	switch n.Kind() {
	case ast.Program, ast.DirectiveList, ast.List, ast.Root:
		for i := 0; i < n.ChildCount(); i++ {
			f.flattenStatement(n.Child(i))
		}
	default:
		f.flattenStatement(n)
	}
}

func (f *Flattener) flattenStatement(n *ast.Node) {
	switch n.Kind() {
	case ast.Var:
		for i := 0; i < n.ChildCount(); i++ {
			f.flattenDeclarator(n.Child(i))
		}
	case ast.Empty:
		// no-op statement
	default:
		d, ok := f.flattenExpr(n)
		if ok {
			f.lastResult, f.lastResultOK = d, true
		}
	}
}

// flattenDeclarator lowers one `Variable` node: child 0 names it, an
// optional child 1 is its initializer. The Extern attribute on the
// Variable node marks it extern (spec.md §8 scenario 4); everything else
// is a private (internal) variable.
func (f *Flattener) flattenDeclarator(v *ast.Node) {
	if v.Kind() != ast.Variable {
		diag.Bug("flatten.flattenDeclarator", "expected Variable node, got %s", v.Kind())
	}
	if v.ChildCount() == 0 {
		return
	}
	nameNode := v.Child(0)
	name := nameNode.String()

	kind := ir.VariableExtern
	if !v.Attribute(ast.Extern) {
		kind = ir.VariablePrivate
	}
	dataKind := ir.DataVariable
	if kind == ir.VariableExtern {
		dataKind = ir.DataExtern
	}
	f.declKind[name] = dataKind

	varType := ir.TypeInteger
	if tn := nameNode.TypeNode(); tn != nil {
		varType = varTypeFor(tn.Kind())
	}
	var initResult ir.Data
	hasInit := false
	if v.ChildCount() > 1 {
		initResult, hasInit = f.flattenExpr(v.Child(1))
		if hasInit {
			varType = varTypeFor(initResult.SourceKind)
		}
	}

	f.prog.DeclareVariable(ir.Variable{Name: name, Type: varType, Kind: kind})

	lhs := ir.Variable(name)
	if dataKind == ir.DataExtern {
		lhs = ir.Extern(name)
	}

	if !hasInit {
		return
	}
	idx := f.prog.Emit(ir.Operation{
		Op: ir.OpAssignment, SourceKind: ast.Assignment,
		LHS: lhs, RHS: true, RHSVal: initResult,
		Result: lhs, HasResult: true,
	})
	f.lastResult, f.lastResultOK, f.lastResultOp = lhs, true, idx
}

func varTypeFor(k ast.Kind) ir.VariableType {
	switch k {
	case ast.FloatingPoint:
		return ir.TypeFloatingPoint
	case ast.String:
		return ir.TypeString
	case ast.True, ast.False:
		return ir.TypeBoolean
	default:
		return ir.TypeInteger
	}
}

// promoteFinalResult renames the final value-producing operation's result
// to "%result" and marks it extern, registering it as an extern variable
// (spec.md §4.3: "the last operation's result is renamed %result and
// marked extern").
func (f *Flattener) promoteFinalResult() {
	if !f.lastResultOK || f.lastResultOp < 0 || f.lastResultOp >= len(f.prog.Operations) {
		return
	}
	op := f.prog.Operations[f.lastResultOp]
	if !op.HasResult {
		return
	}
	resultType := varTypeFor(op.Result.SourceKind)
	renamed := op.Result
	renamed.Kind = ir.DataExtern
	renamed.Name = "%result"
	op.Result = renamed
	f.prog.Operations[f.lastResultOp] = op
	f.prog.DeclareVariable(ir.Variable{Name: "%result", Type: resultType, Kind: ir.VariableExtern})
}

func (f *Flattener) newTemp() string {
	f.tempCount++
	return "%t" + strconv.Itoa(f.tempCount)
}

func (f *Flattener) newLabel() string {
	f.labelCount++
	return "%L" + strconv.Itoa(f.labelCount)
}

// flattenExpr lowers an expression node to the Data describing its value,
// emitting whatever operations are needed to produce it. ok is false only
// for node kinds the flattener doesn't know how to lower (reported as a
// diagnostic, not a panic, since a malformed input tree is a user-facing
// concern here, not a programmer error).
func (f *Flattener) flattenExpr(n *ast.Node) (ir.Data, bool) {
	switch n.Kind() {
	case ast.Integer:
		return ir.LiteralInt(n.Integer()), true
	case ast.FloatingPoint:
		return f.prog.InternFloat(n.Float().Value()), true
	case ast.String:
		return f.prog.InternString(n.String()), true
	case ast.True:
		return ir.LiteralBool(true), true
	case ast.False:
		return ir.LiteralBool(false), true

	case ast.Identifier, ast.VIdentifier:
		if decl := n.Instance(); decl != nil {
			return f.dataForInstance(n.String(), decl), true
		}
		return f.dataForName(n.String()), true

	case ast.Add, ast.Subtract:
		if n.ChildCount() == 1 {
			return f.flattenUnary(n, unaryOpFor(n.Kind()))
		}
		return f.flattenBinary(n, binaryOpFor(n.Kind()))

	case ast.Multiply, ast.Divide, ast.Modulo, ast.Power,
		ast.BitwiseAnd, ast.BitwiseOr, ast.BitwiseXor,
		ast.ShiftLeft, ast.ShiftRight, ast.ShiftRightUnsigned,
		ast.RotateLeft, ast.RotateRight,
		ast.Equal, ast.NotEqual, ast.Less, ast.LessEqual, ast.Greater, ast.GreaterEqual,
		ast.AlmostEqual, ast.StrictlyEqual, ast.StrictlyNotEqual, ast.Compare,
		ast.Minimum, ast.Maximum:
		return f.flattenBinary(n, binaryOpFor(n.Kind()))

	case ast.BitwiseNot, ast.LogicalNot, ast.AbsoluteValue:
		return f.flattenUnary(n, unaryOpFor(n.Kind()))

	case ast.Increment, ast.Decrement, ast.PostIncrement, ast.PostDecrement:
		return f.flattenIncDec(n)

	case ast.LogicalAnd, ast.LogicalOr:
		return f.flattenShortCircuit(n)

	case ast.Conditional:
		return f.flattenConditional(n)

	case ast.Array:
		return f.flattenBinary(n, ir.OpArray)

	case ast.Call:
		return f.flattenCall(n)

	case ast.Assignment, ast.AssignmentAdd, ast.AssignmentSubtract, ast.AssignmentMultiply,
		ast.AssignmentDivide, ast.AssignmentModulo, ast.AssignmentPower,
		ast.AssignmentBitwiseAnd, ast.AssignmentBitwiseOr, ast.AssignmentBitwiseXor,
		ast.AssignmentShiftLeft, ast.AssignmentShiftRight, ast.AssignmentShiftRightUnsigned,
		ast.AssignmentRotateLeft, ast.AssignmentRotateRight,
		ast.AssignmentLogicalAnd, ast.AssignmentLogicalOr, ast.AssignmentLogicalXor,
		ast.AssignmentMinimum, ast.AssignmentMaximum:
		return f.flattenAssignment(n)

	default:
		f.sink.ReportAt(n.Position(), diag.Warning, diag.CodeUnknownIdentifier,
			"flattener has no lowering for node kind %s", n.Kind())
		return ir.Data{}, false
	}
}

func (f *Flattener) dataForName(name string) ir.Data {
	switch f.declKind[name] {
	case ir.DataExtern:
		return ir.Extern(name)
	default:
		return ir.Variable(name)
	}
}

// dataForInstance resolves an identifier through a semantic pass's Instance
// link (set_instance in spec.md's node API) instead of this pass's own
// declaration-order tracking, used when decl wasn't declared earlier in
// this same walk (e.g. a forward reference a real name resolver already
// settled).
func (f *Flattener) dataForInstance(name string, decl *ast.Node) ir.Data {
	if decl.Attribute(ast.Extern) {
		return ir.Extern(name)
	}
	return ir.Variable(name)
}

func (f *Flattener) flattenBinary(n *ast.Node, op ir.Op) (ir.Data, bool) {
	lhs, lok := f.flattenExpr(n.Child(0))
	rhs, rok := f.flattenExpr(n.Child(1))
	if !lok || !rok {
		return ir.Data{}, false
	}
	result := ir.Temporary(f.newTemp())
	idx := f.prog.Emit(ir.Operation{
		Op: op, SourceKind: n.Kind(),
		LHS: lhs, RHS: true, RHSVal: rhs,
		Result: result, HasResult: true,
	})
	f.lastResult, f.lastResultOK, f.lastResultOp = result, true, idx
	return result, true
}

func (f *Flattener) flattenUnary(n *ast.Node, op ir.Op) (ir.Data, bool) {
	operand, ok := f.flattenExpr(n.Child(0))
	if !ok {
		return ir.Data{}, false
	}
	result := ir.Temporary(f.newTemp())
	idx := f.prog.Emit(ir.Operation{
		Op: op, SourceKind: n.Kind(),
		LHS: operand, Result: result, HasResult: true,
	})
	f.lastResult, f.lastResultOK, f.lastResultOp = result, true, idx
	return result, true
}

func (f *Flattener) flattenIncDec(n *ast.Node) (ir.Data, bool) {
	operand, ok := f.flattenExpr(n.Child(0))
	if !ok {
		return ir.Data{}, false
	}
	var op ir.Op
	switch n.Kind() {
	case ast.Increment:
		op = ir.OpIncrement
	case ast.Decrement:
		op = ir.OpDecrement
	case ast.PostIncrement:
		op = ir.OpPostIncrement
	default:
		op = ir.OpPostDecrement
	}
	result := ir.Temporary(f.newTemp())
	idx := f.prog.Emit(ir.Operation{
		Op: op, SourceKind: n.Kind(),
		LHS: operand, Result: result, HasResult: true,
	})
	f.lastResult, f.lastResultOK, f.lastResultOp = result, true, idx
	return result, true
}

// flattenShortCircuit lowers `a && b` / `a || b` through the same
// IfFalse/Goto/Label skeleton the conditional operator uses, since both
// are short-circuiting control flow rather than a plain binary op
// (spec.md §4.3's conditional lowering, generalized).
func (f *Flattener) flattenShortCircuit(n *ast.Node) (ir.Data, bool) {
	lhs, lok := f.flattenExpr(n.Child(0))
	if !lok {
		return ir.Data{}, false
	}
	result := ir.Temporary(f.newTemp())
	skip := f.newLabel()
	end := f.newLabel()

	if n.Kind() == ast.LogicalAnd {
		f.prog.Emit(ir.Operation{Op: ir.OpIfFalse, SourceKind: n.Kind(), LHS: lhs, LabelName: skip})
	} else {
		f.prog.Emit(ir.Operation{Op: ir.OpIfTrue, SourceKind: n.Kind(), LHS: lhs, LabelName: skip})
	}

	rhs, rok := f.flattenExpr(n.Child(1))
	if !rok {
		return ir.Data{}, false
	}
	f.prog.Emit(ir.Operation{
		Op: ir.OpAssignment, SourceKind: ast.Assignment,
		LHS: result, RHS: true, RHSVal: rhs, Result: result, HasResult: true,
	})
	f.prog.Emit(ir.Operation{Op: ir.OpGoto, SourceKind: n.Kind(), LabelName: end})
	f.prog.Emit(ir.Operation{Op: ir.OpLabel, SourceKind: n.Kind(), LabelName: skip})
	idx := f.prog.Emit(ir.Operation{
		Op: ir.OpAssignment, SourceKind: ast.Assignment,
		LHS: result, RHS: true, RHSVal: lhs, Result: result, HasResult: true,
	})
	f.prog.Emit(ir.Operation{Op: ir.OpLabel, SourceKind: n.Kind(), LabelName: end})

	f.lastResult, f.lastResultOK, f.lastResultOp = result, true, idx
	return result, true
}

// flattenConditional lowers `cond ? whenTrue : whenFalse` into
// IfFalse/Goto/Label, per spec.md §4.3.
func (f *Flattener) flattenConditional(n *ast.Node) (ir.Data, bool) {
	cond, ok := f.flattenExpr(n.Child(0))
	if !ok {
		return ir.Data{}, false
	}
	result := ir.Temporary(f.newTemp())
	elseLabel := f.newLabel()
	endLabel := f.newLabel()

	f.prog.Emit(ir.Operation{Op: ir.OpIfFalse, SourceKind: ast.Conditional, LHS: cond, LabelName: elseLabel})

	whenTrue, ok := f.flattenExpr(n.Child(1))
	if !ok {
		return ir.Data{}, false
	}
	f.prog.Emit(ir.Operation{
		Op: ir.OpAssignment, SourceKind: ast.Assignment,
		LHS: result, RHS: true, RHSVal: whenTrue, Result: result, HasResult: true,
	})
	f.prog.Emit(ir.Operation{Op: ir.OpGoto, SourceKind: ast.Conditional, LabelName: endLabel})
	f.prog.Emit(ir.Operation{Op: ir.OpLabel, SourceKind: ast.Conditional, LabelName: elseLabel})

	whenFalse, ok := f.flattenExpr(n.Child(2))
	if !ok {
		return ir.Data{}, false
	}
	idx := f.prog.Emit(ir.Operation{
		Op: ir.OpAssignment, SourceKind: ast.Assignment,
		LHS: result, RHS: true, RHSVal: whenFalse, Result: result, HasResult: true,
	})
	f.prog.Emit(ir.Operation{Op: ir.OpLabel, SourceKind: ast.Conditional, LabelName: endLabel})

	f.lastResult, f.lastResultOK, f.lastResultOp = result, true, idx
	return result, true
}

// mathIntrinsics maps a `Math.<name>` member-call to the IR op it lowers
// to directly, bypassing a generic Param/Call sequence (spec.md §4.3:
// "Call recognizes Math.abs/min/max and lowers to AbsoluteValue/Minimum/
// Maximum").
var mathIntrinsics = map[string]ir.Op{
	"abs": ir.OpAbsoluteValue,
	"min": ir.OpMinimum,
	"max": ir.OpMaximum,
}

func (f *Flattener) flattenCall(n *ast.Node) (ir.Data, bool) {
	callee := n.Child(0)
	if callee.Kind() == ast.Array && callee.ChildCount() == 2 {
		obj, prop := callee.Child(0), callee.Child(1)
		if obj.Kind() == ast.Identifier && obj.String() == "Math" && prop.Kind() == ast.Identifier {
			if op, ok := mathIntrinsics[prop.String()]; ok {
				return f.flattenIntrinsic(n, op)
			}
		}
	}

	for i := 1; i < n.ChildCount(); i++ {
		arg, ok := f.flattenExpr(n.Child(i))
		if !ok {
			return ir.Data{}, false
		}
		f.prog.Emit(ir.Operation{Op: ir.OpParam, SourceKind: ast.Param, LHS: arg, Result: arg})
	}

	name := calleeName(callee)
	result := ir.Temporary(f.newTemp())
	idx := f.prog.Emit(ir.Operation{
		Op: ir.OpCall, SourceKind: ast.Call,
		LHS: ir.Data{Kind: ir.DataLabel, Name: name},
		Result: result, HasResult: true,
	})
	f.lastResult, f.lastResultOK, f.lastResultOp = result, true, idx
	return result, true
}

func (f *Flattener) flattenIntrinsic(n *ast.Node, op ir.Op) (ir.Data, bool) {
	var args []ir.Data
	for i := 1; i < n.ChildCount(); i++ {
		arg, ok := f.flattenExpr(n.Child(i))
		if !ok {
			return ir.Data{}, false
		}
		args = append(args, arg)
	}
	result := ir.Temporary(f.newTemp())
	built := ir.Operation{Op: op, SourceKind: n.Kind(), Result: result, HasResult: true}
	if len(args) > 0 {
		built.LHS = args[0]
	}
	if len(args) > 1 {
		built.RHS = true
		built.RHSVal = args[1]
	}
	if len(args) > 2 {
		built.ExtraParams = args[2:]
	}
	idx := f.prog.Emit(built)
	f.lastResult, f.lastResultOK, f.lastResultOp = result, true, idx
	return result, true
}

func calleeName(n *ast.Node) string {
	switch n.Kind() {
	case ast.Identifier, ast.VIdentifier:
		return n.String()
	case ast.Array:
		if n.ChildCount() == 2 {
			return calleeName(n.Child(0)) + "." + calleeName(n.Child(1))
		}
	}
	return "?"
}

func (f *Flattener) flattenAssignment(n *ast.Node) (ir.Data, bool) {
	lvalue := n.Child(0)
	if lvalue.Kind() != ast.Identifier && lvalue.Kind() != ast.VIdentifier {
		f.sink.ReportAt(n.Position(), diag.Error, diag.CodeUnknownIdentifier,
			"assignment target must be an identifier, got %s", lvalue.Kind())
		return ir.Data{}, false
	}
	lhs := f.dataForName(lvalue.String())

	rhs, ok := f.flattenExpr(n.Child(1))
	if !ok {
		return ir.Data{}, false
	}

	op := ir.OpAssignment
	if compound, isCompound := compoundOpFor(n.Kind()); isCompound {
		tmp := ir.Temporary(f.newTemp())
		f.prog.Emit(ir.Operation{
			Op: compound, SourceKind: n.Kind(), LHS: lhs, RHS: true, RHSVal: rhs,
			Result: tmp, HasResult: true,
		})
		rhs = tmp
	}

	idx := f.prog.Emit(ir.Operation{
		Op: op, SourceKind: ast.Assignment, LHS: lhs, RHS: true, RHSVal: rhs,
		Result: lhs, HasResult: true,
	})
	f.lastResult, f.lastResultOK, f.lastResultOp = lhs, true, idx
	return lhs, true
}

func compoundOpFor(k ast.Kind) (ir.Op, bool) {
	switch k {
	case ast.AssignmentAdd:
		return ir.OpAdd, true
	case ast.AssignmentSubtract:
		return ir.OpSubtract, true
	case ast.AssignmentMultiply:
		return ir.OpMultiply, true
	case ast.AssignmentDivide:
		return ir.OpDivide, true
	case ast.AssignmentModulo:
		return ir.OpModulo, true
	case ast.AssignmentPower:
		return ir.OpPower, true
	case ast.AssignmentBitwiseAnd:
		return ir.OpBitwiseAnd, true
	case ast.AssignmentBitwiseOr:
		return ir.OpBitwiseOr, true
	case ast.AssignmentBitwiseXor:
		return ir.OpBitwiseXor, true
	case ast.AssignmentShiftLeft:
		return ir.OpShiftLeft, true
	case ast.AssignmentShiftRight:
		return ir.OpShiftRight, true
	case ast.AssignmentShiftRightUnsigned:
		return ir.OpShiftRightUnsigned, true
	case ast.AssignmentRotateLeft:
		return ir.OpRotateLeft, true
	case ast.AssignmentRotateRight:
		return ir.OpRotateRight, true
	case ast.AssignmentMinimum:
		return ir.OpMinimum, true
	case ast.AssignmentMaximum:
		return ir.OpMaximum, true
	default:
		return 0, false
	}
}

func binaryOpFor(k ast.Kind) ir.Op {
	switch k {
	case ast.Add:
		return ir.OpAdd
	case ast.Subtract:
		return ir.OpSubtract
	case ast.Multiply:
		return ir.OpMultiply
	case ast.Divide:
		return ir.OpDivide
	case ast.Modulo:
		return ir.OpModulo
	case ast.Power:
		return ir.OpPower
	case ast.BitwiseAnd:
		return ir.OpBitwiseAnd
	case ast.BitwiseOr:
		return ir.OpBitwiseOr
	case ast.BitwiseXor:
		return ir.OpBitwiseXor
	case ast.ShiftLeft:
		return ir.OpShiftLeft
	case ast.ShiftRight:
		return ir.OpShiftRight
	case ast.ShiftRightUnsigned:
		return ir.OpShiftRightUnsigned
	case ast.RotateLeft:
		return ir.OpRotateLeft
	case ast.RotateRight:
		return ir.OpRotateRight
	case ast.Equal:
		return ir.OpEqual
	case ast.NotEqual:
		return ir.OpNotEqual
	case ast.Less:
		return ir.OpLess
	case ast.LessEqual:
		return ir.OpLessEqual
	case ast.Greater:
		return ir.OpGreater
	case ast.GreaterEqual:
		return ir.OpGreaterEqual
	case ast.AlmostEqual:
		return ir.OpAlmostEqual
	case ast.StrictlyEqual:
		return ir.OpStrictlyEqual
	case ast.StrictlyNotEqual:
		return ir.OpStrictlyNotEqual
	case ast.Compare:
		return ir.OpCompare
	case ast.Minimum:
		return ir.OpMinimum
	case ast.Maximum:
		return ir.OpMaximum
	case ast.Array:
		return ir.OpArray
	default:
		diag.Bug("flatten.binaryOpFor", "kind %s is not a binary operator", k)
		panic("unreachable")
	}
}

func unaryOpFor(k ast.Kind) ir.Op {
	switch k {
	case ast.Add:
		return ir.OpIdentity
	case ast.Subtract:
		return ir.OpNegate
	case ast.BitwiseNot:
		return ir.OpBitwiseNot
	case ast.LogicalNot:
		return ir.OpLogicalNot
	case ast.AbsoluteValue:
		return ir.OpAbsoluteValue
	default:
		diag.Bug("flatten.unaryOpFor", "kind %s is not a unary operator", k)
		panic("unreachable")
	}
}
