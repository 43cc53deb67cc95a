package literal

import "math"

// Ordering is the three-way result of comparing two floating-point or
// literal-node values, mirroring as2js's compare_t.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
	Unordered
)

// nearlyEqualEpsilon is the relative tolerance used by NearlyEqual, matching
// the "smart match" (~~) comparison mode's tolerance for floating drift.
const nearlyEqualEpsilon = 1e-9

// Float wraps an IEEE-754 double with the predicates the node model and
// emitter need beyond what math provides directly.
type Float struct {
	value float64
}

// NewFloat wraps v.
func NewFloat(v float64) Float { return Float{value: v} }

// Value returns the raw float64.
func (f Float) Value() float64 { return f.value }

// IsNaN reports whether f is NaN.
func (f Float) IsNaN() bool { return math.IsNaN(f.value) }

// IsInfinity reports whether f is +Infinity or -Infinity.
func (f Float) IsInfinity() bool { return math.IsInf(f.value, 0) }

// IsPositiveInfinity reports whether f is +Infinity.
func (f Float) IsPositiveInfinity() bool { return math.IsInf(f.value, 1) }

// IsNegativeInfinity reports whether f is -Infinity.
func (f Float) IsNegativeInfinity() bool { return math.IsInf(f.value, -1) }

// Classify returns a human-readable class name, used by diagnostics and
// the node dumper.
func (f Float) Classify() string {
	switch {
	case f.IsNaN():
		return "NaN"
	case f.IsPositiveInfinity():
		return "+Infinity"
	case f.IsNegativeInfinity():
		return "-Infinity"
	case f.value == 0:
		if math.Signbit(f.value) {
			return "-0"
		}
		return "+0"
	default:
		return "finite"
	}
}

// NearlyEqual reports whether f and other are close enough to be considered
// equal under the "smart match" (~~) comparison mode.
func (f Float) NearlyEqual(other Float) bool {
	if f.value == other.value {
		return true
	}
	if f.IsNaN() || other.IsNaN() {
		return false
	}
	diff := math.Abs(f.value - other.value)
	if diff <= nearlyEqualEpsilon {
		return true
	}
	largest := math.Max(math.Abs(f.value), math.Abs(other.value))
	return diff <= largest*nearlyEqualEpsilon
}

// CompareStrict performs a three-way compare with no coercion: NaN on
// either side is Unordered, otherwise ordinary IEEE ordering.
func (f Float) CompareStrict(other Float) Ordering {
	if f.IsNaN() || other.IsNaN() {
		return Unordered
	}
	switch {
	case f.value < other.value:
		return Less
	case f.value > other.value:
		return Greater
	default:
		return Equal
	}
}

// CompareSmart performs a three-way compare using NearlyEqual in place of
// exact equality, per the "smart match" (~~) operator's semantics.
func (f Float) CompareSmart(other Float) Ordering {
	if f.IsNaN() || other.IsNaN() {
		return Unordered
	}
	if f.NearlyEqual(other) {
		return Equal
	}
	if f.value < other.value {
		return Less
	}
	return Greater
}

// BitPattern reinterprets the float's bits as a uint64 (the same bits
// ir.Program.InternFloat keys and compares its float constant pool by).
func (f Float) BitPattern() uint64 {
	return math.Float64bits(f.value)
}
