// Package ast implements the polymorphic AST node model (spec.md §3/§4.1):
// a tagged-variant tree with flags, attributes, cross-links, and locking.
package ast

// Kind tags an AST node's variant, the equivalent of as2js's node_t. This is
// a representative subset of the original's ~200 kinds: every kind named by
// spec.md's component descriptions and testable scenarios is present; kinds
// the flattener/emitter never touch (the full surface of keywords and
// declaration forms) are omitted to fit the implementation budget — see
// DESIGN.md.
type Kind int

const (
	Unknown Kind = iota

	// structure
	Root
	Program
	Package
	DirectiveList
	List
	Empty
	EOF

	// literals
	Integer
	FloatingPoint
	String
	True
	False
	Null
	Undefined
	Template
	TemplateHead
	TemplateMiddle
	TemplateTail
	RegularExpression

	// names
	Identifier
	VIdentifier
	Label

	// arithmetic / bitwise operators
	Add
	Subtract
	Multiply
	Divide
	Modulo
	Power
	Negate
	Identity
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	BitwiseNot
	ShiftLeft
	ShiftRight
	ShiftRightUnsigned
	RotateLeft
	RotateRight
	Increment
	Decrement
	PostIncrement
	PostDecrement
	Minimum
	Maximum
	AbsoluteValue

	// logical / comparison
	LogicalAnd
	LogicalOr
	LogicalXor
	LogicalNot
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	AlmostEqual
	StrictlyEqual
	StrictlyNotEqual
	Compare
	Conditional
	Coalesce

	// assignment
	Assignment
	AssignmentAdd
	AssignmentSubtract
	AssignmentMultiply
	AssignmentDivide
	AssignmentModulo
	AssignmentPower
	AssignmentBitwiseAnd
	AssignmentBitwiseOr
	AssignmentBitwiseXor
	AssignmentShiftLeft
	AssignmentShiftRight
	AssignmentShiftRightUnsigned
	AssignmentRotateLeft
	AssignmentRotateRight
	AssignmentLogicalAnd
	AssignmentLogicalOr
	AssignmentLogicalXor
	AssignmentMinimum
	AssignmentMaximum

	// member / call
	Array
	Call
	Param
	Parameters
	ParamMatch
	As

	// declarations
	Var
	Variable
	VarAttributes
	Function
	Class
	Enum
	Type

	// control flow
	If
	Else
	For
	While
	Do
	Switch
	Case
	Default
	Catch
	Try
	Finally
	Throw
	Break
	Continue
	Return
	Goto
	IfTrue
	IfFalse
	With

	// punctuation (lexer-only token kinds; the flattener consumes the
	// surrounding structure they delimit rather than building nodes from
	// them directly)
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Semicolon
	Colon
	Dot
	QuestionMark
	Arrow
	Ellipsis
	In

	max
)

var kindNames = map[Kind]string{
	Unknown:            "Unknown",
	Root:               "Root",
	Program:            "Program",
	Package:            "Package",
	DirectiveList:      "DirectiveList",
	List:               "List",
	Empty:              "Empty",
	EOF:                "EOF",
	Integer:            "Integer",
	FloatingPoint:      "FloatingPoint",
	String:             "String",
	True:               "True",
	False:              "False",
	Null:               "Null",
	Undefined:          "Undefined",
	Template:           "Template",
	TemplateHead:       "TemplateHead",
	TemplateMiddle:     "TemplateMiddle",
	TemplateTail:       "TemplateTail",
	RegularExpression:  "RegularExpression",
	Identifier:         "Identifier",
	VIdentifier:        "VIdentifier",
	Label:              "Label",
	Add:                "Add",
	Subtract:           "Subtract",
	Multiply:           "Multiply",
	Divide:             "Divide",
	Modulo:             "Modulo",
	Power:              "Power",
	Negate:             "Negate",
	Identity:           "Identity",
	BitwiseAnd:         "BitwiseAnd",
	BitwiseOr:          "BitwiseOr",
	BitwiseXor:         "BitwiseXor",
	BitwiseNot:         "BitwiseNot",
	ShiftLeft:          "ShiftLeft",
	ShiftRight:         "ShiftRight",
	ShiftRightUnsigned: "ShiftRightUnsigned",
	RotateLeft:         "RotateLeft",
	RotateRight:        "RotateRight",
	Increment:          "Increment",
	Decrement:          "Decrement",
	PostIncrement:      "PostIncrement",
	PostDecrement:      "PostDecrement",
	Minimum:            "Minimum",
	Maximum:            "Maximum",
	AbsoluteValue:      "AbsoluteValue",
	LogicalAnd:         "LogicalAnd",
	LogicalOr:          "LogicalOr",
	LogicalXor:         "LogicalXor",
	LogicalNot:         "LogicalNot",
	Equal:              "Equal",
	NotEqual:           "NotEqual",
	Less:               "Less",
	LessEqual:          "LessEqual",
	Greater:            "Greater",
	GreaterEqual:       "GreaterEqual",
	AlmostEqual:        "AlmostEqual",
	StrictlyEqual:      "StrictlyEqual",
	StrictlyNotEqual:   "StrictlyNotEqual",
	Compare:            "Compare",
	Conditional:        "Conditional",
	Coalesce:           "Coalesce",
	Assignment:         "Assignment",
	AssignmentAdd:      "AssignmentAdd",
	AssignmentSubtract: "AssignmentSubtract",
	AssignmentMultiply: "AssignmentMultiply",
	AssignmentDivide:   "AssignmentDivide",
	AssignmentModulo:   "AssignmentModulo",
	AssignmentPower:    "AssignmentPower",
	AssignmentBitwiseAnd:         "AssignmentBitwiseAnd",
	AssignmentBitwiseOr:          "AssignmentBitwiseOr",
	AssignmentBitwiseXor:         "AssignmentBitwiseXor",
	AssignmentShiftLeft:          "AssignmentShiftLeft",
	AssignmentShiftRight:         "AssignmentShiftRight",
	AssignmentShiftRightUnsigned: "AssignmentShiftRightUnsigned",
	AssignmentRotateLeft:         "AssignmentRotateLeft",
	AssignmentRotateRight:        "AssignmentRotateRight",
	AssignmentLogicalAnd:         "AssignmentLogicalAnd",
	AssignmentLogicalOr:          "AssignmentLogicalOr",
	AssignmentLogicalXor:         "AssignmentLogicalXor",
	AssignmentMinimum:            "AssignmentMinimum",
	AssignmentMaximum:            "AssignmentMaximum",
	Array:         "Array",
	Call:          "Call",
	Param:         "Param",
	Parameters:    "Parameters",
	ParamMatch:    "ParamMatch",
	As:            "As",
	Var:           "Var",
	Variable:      "Variable",
	VarAttributes: "VarAttributes",
	Function:      "Function",
	Class:         "Class",
	Enum:          "Enum",
	Type:          "Type",
	If:            "If",
	Else:          "Else",
	For:           "For",
	While:         "While",
	Do:            "Do",
	Switch:        "Switch",
	Case:          "Case",
	Default:       "Default",
	Catch:         "Catch",
	Try:           "Try",
	Finally:       "Finally",
	Throw:         "Throw",
	Break:         "Break",
	Continue:      "Continue",
	Return:        "Return",
	Goto:          "Goto",
	IfTrue:        "IfTrue",
	IfFalse:       "IfFalse",
	With:          "With",
	LeftParen:     "LeftParen",
	RightParen:    "RightParen",
	LeftBrace:     "LeftBrace",
	RightBrace:    "RightBrace",
	LeftBracket:   "LeftBracket",
	RightBracket:  "RightBracket",
	Comma:         "Comma",
	Semicolon:     "Semicolon",
	Colon:         "Colon",
	Dot:           "Dot",
	QuestionMark:  "QuestionMark",
	Arrow:         "Arrow",
	Ellipsis:      "Ellipsis",
	In:            "In",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(?)"
}

// Valid reports whether k is a recognized, constructible kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsLiteral reports whether k is a leaf literal kind eligible for the
// three-way compare family (spec.md §4.1 "Three-way compare").
func (k Kind) IsLiteral() bool {
	switch k {
	case Integer, FloatingPoint, String, True, False, Null, Undefined:
		return true
	default:
		return false
	}
}
