// Package ir is the flat three-address intermediate representation the
// flattener produces and the emitter consumes (spec.md §3 "Operation (IR)" /
// "Data (IR operand)").
package ir

import (
	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/literal"
)

// Op tags an IR instruction. Names mirror the operator/control-flow node
// kinds they lower from (spec.md §4.5's "Operation lowerings").
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpShiftLeft
	OpShiftRight
	OpShiftRightUnsigned
	OpRotateLeft
	OpRotateRight
	OpNegate
	OpIdentity
	OpBitwiseNot
	OpLogicalNot
	OpIncrement
	OpDecrement
	OpPostIncrement
	OpPostDecrement
	OpMinimum
	OpMaximum
	OpAbsoluteValue
	OpCompare
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAlmostEqual
	OpStrictlyEqual
	OpStrictlyNotEqual
	OpAssignment
	OpArray
	OpParam
	OpCall
	OpGoto
	OpIfTrue
	OpIfFalse
	OpLabel
)

var opNames = map[Op]string{
	OpAdd: "Add", OpSubtract: "Subtract", OpMultiply: "Multiply", OpDivide: "Divide",
	OpModulo: "Modulo", OpPower: "Power", OpBitwiseAnd: "BitwiseAnd", OpBitwiseOr: "BitwiseOr",
	OpBitwiseXor: "BitwiseXor", OpShiftLeft: "ShiftLeft", OpShiftRight: "ShiftRight",
	OpShiftRightUnsigned: "ShiftRightUnsigned", OpRotateLeft: "RotateLeft", OpRotateRight: "RotateRight",
	OpNegate: "Negate", OpIdentity: "Identity", OpBitwiseNot: "BitwiseNot", OpLogicalNot: "LogicalNot",
	OpIncrement: "Increment", OpDecrement: "Decrement", OpPostIncrement: "PostIncrement",
	OpPostDecrement: "PostDecrement", OpMinimum: "Minimum", OpMaximum: "Maximum",
	OpAbsoluteValue: "AbsoluteValue", OpCompare: "Compare", OpEqual: "Equal", OpNotEqual: "NotEqual",
	OpLess: "Less", OpLessEqual: "LessEqual", OpGreater: "Greater", OpGreaterEqual: "GreaterEqual",
	OpAlmostEqual: "AlmostEqual", OpStrictlyEqual: "StrictlyEqual", OpStrictlyNotEqual: "StrictlyNotEqual",
	OpAssignment: "Assignment", OpArray: "Array", OpParam: "Param", OpCall: "Call",
	OpGoto: "Goto", OpIfTrue: "IfTrue", OpIfFalse: "IfFalse", OpLabel: "Label",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "Op(?)"
}

// commutativeFoldable lists the binary ops Foldable reports as eligible for
// constant folding when both operands are literal (spec.md §1's "only
// trivial constant/immediate folding at emit time"); the flattener itself
// does not fold.
var commutativeFoldable = map[Op]bool{
	OpAdd: true, OpSubtract: true, OpMultiply: true, OpBitwiseAnd: true, OpBitwiseOr: true, OpBitwiseXor: true,
}

// Foldable reports whether o is eligible for immediate constant folding.
func Foldable(o Op) bool { return commutativeFoldable[o] }

// DataKind classifies what a Data operand refers to.
type DataKind int

const (
	DataLiteral DataKind = iota
	DataTemporary
	DataVariable
	DataExtern
	DataLabel
)

func (k DataKind) String() string {
	switch k {
	case DataLiteral:
		return "literal"
	case DataTemporary:
		return "temporary"
	case DataVariable:
		return "variable"
	case DataExtern:
		return "extern"
	case DataLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Data is an IR operand: a view over either a literal payload carried
// straight from a node, or a named storage location (temporary, declared
// variable, extern variable) or code label.
type Data struct {
	Kind DataKind
	Name string

	SourceKind ast.Kind

	IntVal   literal.Integer
	HasInt   bool
	FloatVal literal.Float
	HasFloat bool
	StrVal   string
	HasStr   bool
	BoolVal  bool
	HasBool  bool
}

// IsTemporary reports whether d names a compiler-introduced temporary.
func (d Data) IsTemporary() bool { return d.Kind == DataTemporary }

// IsExtern reports whether d names a host-visible extern variable.
func (d Data) IsExtern() bool { return d.Kind == DataExtern }

// IsVariableBacked reports whether d has stack storage (temporary, local
// variable, or extern), as opposed to an inline literal.
func (d Data) IsVariableBacked() bool {
	return d.Kind == DataTemporary || d.Kind == DataVariable || d.Kind == DataExtern
}

// SmallestSize returns the tightest x86-64 immediate size for a literal
// integer Data; panics via the caller's own checks if d isn't an integer
// literal (only the emitter calls this, always behind a kind check).
func (d Data) SmallestSize() literal.Size {
	return d.IntVal.SmallestSize()
}

// LiteralInt returns an integer literal Data.
func LiteralInt(v literal.Integer) Data {
	return Data{Kind: DataLiteral, SourceKind: ast.Integer, IntVal: v, HasInt: true}
}

// LiteralFloat returns a floating-point literal Data.
func LiteralFloat(v literal.Float) Data {
	return Data{Kind: DataLiteral, SourceKind: ast.FloatingPoint, FloatVal: v, HasFloat: true}
}

// LiteralString returns a string literal Data.
func LiteralString(v string) Data {
	return Data{Kind: DataLiteral, SourceKind: ast.String, StrVal: v, HasStr: true}
}

// LiteralBool returns a boolean literal Data.
func LiteralBool(v bool) Data {
	k := ast.False
	if v {
		k = ast.True
	}
	return Data{Kind: DataLiteral, SourceKind: k, BoolVal: v, HasBool: true}
}

// Temporary returns a Data referring to a compiler-introduced temporary by
// name (e.g. "%t3").
func Temporary(name string) Data { return Data{Kind: DataTemporary, Name: name} }

// Variable returns a Data referring to a declared (non-extern) variable.
func Variable(name string) Data { return Data{Kind: DataVariable, Name: name} }

// Extern returns a Data referring to a host-visible extern variable.
func Extern(name string) Data { return Data{Kind: DataExtern, Name: name} }

// Label returns a Data referring to a code label.
func Label(name string) Data { return Data{Kind: DataLabel, Name: name} }

// Operation is one flat IR instruction: {op_kind, source_node, lhs, rhs,
// extra_params, result, label} per spec.md §3.
type Operation struct {
	Op         Op
	SourceKind ast.Kind

	LHS    Data
	RHS    bool // whether RHS is meaningful (binary op)
	RHSVal Data

	ExtraParams []Data

	Result    Data
	HasResult bool

	LabelName string
}
