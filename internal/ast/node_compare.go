package ast

import (
	"math"

	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/literal"
)

// Mode selects how Compare coerces operands before ordering them
// (spec.md §4.1 "Three-way comparison modes").
type Mode int

const (
	Strict Mode = iota
	Loose
	Smart
)

// Compare performs a three-way comparison of two literal nodes under mode.
// Both n and other must be literal kinds (Integer, FloatingPoint, String,
// True, False, Null, Undefined); comparing a non-literal is a programmer
// error, caught by diag.Bug rather than silently returning Unordered.
func (n *Node) Compare(other *Node, mode Mode) literal.Ordering {
	if !n.kind.IsLiteral() || !other.kind.IsLiteral() {
		diag.Bug("Node.Compare", "compare requires literal nodes, got %s and %s", n.kind, other.kind)
	}

	switch mode {
	case Strict:
		return n.compareStrict(other)
	case Loose:
		return n.compareLoose(other)
	case Smart:
		return n.compareSmart(other)
	default:
		diag.Bug("Node.Compare", "unknown compare mode %d", int(mode))
		panic("unreachable")
	}
}

// compareStrict requires identical kinds; mismatched kinds are Unordered
// (the JS `===` family never coerces).
func (n *Node) compareStrict(other *Node) literal.Ordering {
	if n.kind != other.kind {
		return literal.Unordered
	}
	switch n.kind {
	case Integer:
		return compareInt64(n.intVal.Value(), other.intVal.Value())
	case FloatingPoint:
		return n.floatVal.CompareStrict(other.floatVal)
	case String:
		return compareStrings(n.strVal, other.strVal)
	case True, False:
		return literal.Equal
	case Null, Undefined:
		return literal.Equal
	default:
		return literal.Unordered
	}
}

// compareLoose coerces mismatched kinds toward a common representation the
// way JS `==` does: numbers compare numerically, anything else falls back
// to string comparison once one side is a string.
func (n *Node) compareLoose(other *Node) literal.Ordering {
	if n.kind == other.kind {
		return n.compareStrict(other)
	}
	if isNumericKind(n.kind) && isNumericKind(other.kind) {
		return compareAsFloat(n, other)
	}
	if n.kind == String || other.kind == String {
		return compareStrings(n.asLooseString(), other.asLooseString())
	}
	if isBooleanish(n.kind) || isBooleanish(other.kind) {
		return compareAsFloat(n, other)
	}
	return literal.Unordered
}

// compareSmart behaves like compareLoose but uses NearlyEqual for float
// comparisons, the "smart match" (~~) operator's tolerance-based equality.
func (n *Node) compareSmart(other *Node) literal.Ordering {
	if n.kind == FloatingPoint || other.kind == FloatingPoint {
		a, aok := n.numericValue()
		b, bok := other.numericValue()
		if aok && bok {
			return literal.NewFloat(a).CompareSmart(literal.NewFloat(b))
		}
	}
	return n.compareLoose(other)
}

func isNumericKind(k Kind) bool {
	switch k {
	case Integer, FloatingPoint, True, False, Null:
		return true
	default:
		return false
	}
}

func isBooleanish(k Kind) bool {
	return k == True || k == False || k == Null || k == Undefined
}

func (n *Node) numericValue() (float64, bool) {
	switch n.kind {
	case Integer:
		return float64(n.intVal.Value()), true
	case FloatingPoint:
		return n.floatVal.Value(), true
	case True:
		return 1, true
	case False, Null:
		return 0, true
	case Undefined:
		return math.NaN(), true
	default:
		return 0, false
	}
}

func compareAsFloat(n, other *Node) literal.Ordering {
	a, aok := n.numericValue()
	b, bok := other.numericValue()
	if !aok || !bok {
		return literal.Unordered
	}
	return literal.NewFloat(a).CompareStrict(literal.NewFloat(b))
}

func (n *Node) asLooseString() string {
	switch n.kind {
	case String:
		return n.strVal
	case Integer:
		return int64String(n.intVal.Value())
	case FloatingPoint:
		return float64String(n.floatVal.Value())
	case True:
		return "true"
	case False:
		return "false"
	case Null:
		return "null"
	case Undefined:
		return "undefined"
	default:
		return ""
	}
}

func compareInt64(a, b int64) literal.Ordering {
	switch {
	case a < b:
		return literal.Less
	case a > b:
		return literal.Greater
	default:
		return literal.Equal
	}
}

func compareStrings(a, b string) literal.Ordering {
	switch {
	case a < b:
		return literal.Less
	case a > b:
		return literal.Greater
	default:
		return literal.Equal
	}
}
