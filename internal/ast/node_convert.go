package ast

import (
	"strconv"

	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/literal"
)

func int64String(v int64) string   { return strconv.FormatInt(v, 10) }
func float64String(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// ToUnknown resets the node to the Unknown kind in place, discarding its
// payload. Used by the flattener to mark a subtree dead without detaching
// it mid-traversal (spec.md's "conversion family" to_unknown).
func (n *Node) ToUnknown() {
	n.modifying("Node.ToUnknown")
	n.kind = Unknown
	n.hasInt, n.hasFloat, n.hasStr = false, false, false
	n.flags = nil
	n.attrs = nil
}

// ToBooleanTypeOnly reports the truthiness a literal node would have
// without performing the in-place conversion: true/false for True/False,
// false for Null/Undefined, value != 0 for Integer, !IsNaN && value != 0
// for FloatingPoint, non-empty for String. Non-literal kinds report
// Unknown via the second return.
func (n *Node) ToBooleanTypeOnly() (value bool, ok bool) {
	switch n.kind {
	case True:
		return true, true
	case False, Null, Undefined:
		return false, true
	case Integer:
		return n.intVal.Value() != 0, true
	case FloatingPoint:
		return !n.floatVal.IsNaN() && n.floatVal.Value() != 0, true
	case String:
		return literal.IsTrue(n.strVal) || n.strVal != "", true
	default:
		return false, false
	}
}

// ToBoolean converts n in place to a True/False node, the way
// ToBooleanTypeOnly's result would be written back into the tree.
func (n *Node) ToBoolean() {
	value, ok := n.ToBooleanTypeOnly()
	if !ok {
		diag.Bug("Node.ToBoolean", "kind %s cannot convert to boolean", n.kind)
	}
	n.modifying("Node.ToBoolean")
	n.hasInt, n.hasFloat, n.hasStr = false, false, false
	if value {
		n.kind = True
	} else {
		n.kind = False
	}
}

// ToInteger converts a literal node to Integer in place.
func (n *Node) ToInteger() {
	var v int64
	switch n.kind {
	case Integer:
		return
	case FloatingPoint:
		v = int64(n.floatVal.Value())
	case True:
		v = 1
	case False, Null, Undefined:
		v = 0
	case String:
		v = literal.ToInteger(n.strVal)
	default:
		diag.Bug("Node.ToInteger", "kind %s cannot convert to integer", n.kind)
	}
	n.modifying("Node.ToInteger")
	n.hasFloat, n.hasStr = false, false
	n.kind = Integer
	n.intVal = literal.NewInteger(v)
	n.hasInt = true
}

// ToFloatingPoint converts a literal node to FloatingPoint in place.
func (n *Node) ToFloatingPoint() {
	var v float64
	switch n.kind {
	case FloatingPoint:
		return
	case Integer:
		v = float64(n.intVal.Value())
	case True:
		v = 1
	case False, Null:
		v = 0
	case Undefined:
		v = literal.ToFloatingPoint("NaN")
	case String:
		v = literal.ToFloatingPoint(n.strVal)
	default:
		diag.Bug("Node.ToFloatingPoint", "kind %s cannot convert to float", n.kind)
	}
	n.modifying("Node.ToFloatingPoint")
	n.hasInt, n.hasStr = false, false
	n.kind = FloatingPoint
	n.floatVal = literal.NewFloat(v)
	n.hasFloat = true
}

// ToNumber converts a literal node to Integer or FloatingPoint: Integer and
// FloatingPoint nodes are left as they are, a String becomes Integer when
// literal.IsInteger accepts it and FloatingPoint otherwise (non-numeric
// strings included), and every other kind goes through ToInteger.
func (n *Node) ToNumber() {
	switch n.kind {
	case Integer, FloatingPoint:
		return
	case String:
		if literal.IsInteger(n.strVal, false) {
			n.ToInteger()
		} else {
			n.ToFloatingPoint()
		}
	default:
		n.ToInteger()
	}
}

// ToString converts a literal node to String in place.
func (n *Node) ToString() {
	var v string
	switch n.kind {
	case String:
		return
	case Integer:
		v = int64String(n.intVal.Value())
	case FloatingPoint:
		v = float64String(n.floatVal.Value())
	case True:
		v = "true"
	case False:
		v = "false"
	case Null:
		v = "null"
	case Undefined:
		v = "undefined"
	default:
		diag.Bug("Node.ToString", "kind %s cannot convert to string", n.kind)
	}
	n.modifying("Node.ToString")
	n.hasInt, n.hasFloat = false, false
	n.kind = String
	n.strVal = v
	n.hasStr = true
}

// ToIdentifier converts a VIdentifier or Label node to a plain Identifier
// in place, keeping its name payload.
func (n *Node) ToIdentifier() {
	if n.kind != VIdentifier && n.kind != Label && n.kind != Identifier {
		diag.Bug("Node.ToIdentifier", "kind %s cannot convert to identifier", n.kind)
	}
	n.modifying("Node.ToIdentifier")
	n.kind = Identifier
}

// ToLabel converts an Identifier to a Label node in place, keeping its name.
func (n *Node) ToLabel() {
	if n.kind != Identifier {
		diag.Bug("Node.ToLabel", "kind %s cannot convert to label", n.kind)
	}
	n.modifying("Node.ToLabel")
	n.kind = Label
}

// ToVIdentifier converts an Identifier to a VIdentifier node in place.
func (n *Node) ToVIdentifier() {
	if n.kind != Identifier {
		diag.Bug("Node.ToVIdentifier", "kind %s cannot convert to videntifier", n.kind)
	}
	n.modifying("Node.ToVIdentifier")
	n.kind = VIdentifier
}

// ToVarAttributes converts an Identifier naming a recognized attribute
// keyword into a VarAttributes node, the flattener step that turns
// `native static function f()`'s leading words from identifiers into
// attribute markers.
func (n *Node) ToVarAttributes() {
	if n.kind != Identifier {
		diag.Bug("Node.ToVarAttributes", "kind %s cannot convert to var attributes", n.kind)
	}
	n.modifying("Node.ToVarAttributes")
	n.kind = VarAttributes
}

// ToCall converts a Identifier/Array node being invoked into a Call node,
// preserving its children as the argument list.
func (n *Node) ToCall() {
	if n.kind != Identifier && n.kind != VIdentifier && n.kind != Array {
		diag.Bug("Node.ToCall", "kind %s cannot convert to call", n.kind)
	}
	n.modifying("Node.ToCall")
	n.kind = Call
}

// ToAs converts a binary expression node into an As node (type-assertion
// rewrite), keeping its two children as (value, type) operands.
func (n *Node) ToAs() {
	n.modifying("Node.ToAs")
	n.kind = As
}
