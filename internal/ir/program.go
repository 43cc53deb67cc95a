package ir

import (
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/literal"
)

// VariableType classifies the native storage a variable needs, matching
// the binary_variable record's type enum (spec.md §6).
type VariableType int

const (
	TypeBoolean VariableType = iota
	TypeInteger
	TypeFloatingPoint
	TypeString
	TypeRange
	TypeArray
)

func (t VariableType) String() string {
	switch t {
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeFloatingPoint:
		return "FloatingPoint"
	case TypeString:
		return "String"
	case TypeRange:
		return "Range"
	case TypeArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Size returns the type's native byte width, as used to decide a
// temporary's stack slot region (1-byte booleans vs 8-byte everything
// else) in internal/buildfile.
func (t VariableType) Size() int {
	if t == TypeBoolean {
		return 1
	}
	return 8
}

// VariableKind distinguishes how a named variable is scoped.
type VariableKind int

const (
	VariableExtern VariableKind = iota
	VariableTemp
	VariablePrivate
)

// Variable is one entry in the flattener's variables map: a user
// declaration, a compiler-introduced temporary, or a private constant.
type Variable struct {
	Name string
	Type VariableType
	Kind VariableKind
}

// Program is the flattener's output: spec.md §4.3's operation list, data
// list (de-duplicated float/string constants), and variables map.
type Program struct {
	Operations []Operation
	Variables  map[string]Variable
	order      []string // insertion order, variables map is unordered

	floatPool  []Data
	stringPool []Data
	// hashIndex narrows the linear search spec.md §4.3 requires ("equality
	// is bit-exact for floats, string equality for strings") to same-hash
	// candidates only; it never replaces the equality check itself.
	hashIndex map[uint64][]int
}

// NewProgram returns an empty Program ready to accumulate operations.
func NewProgram() *Program {
	return &Program{
		Variables: make(map[string]Variable),
		hashIndex: make(map[uint64][]int),
	}
}

// DeclareVariable records a variable if not already present, preserving
// first-seen order for deterministic dumps/tests.
func (p *Program) DeclareVariable(v Variable) {
	if _, exists := p.Variables[v.Name]; exists {
		return
	}
	p.Variables[v.Name] = v
	p.order = append(p.order, v.Name)
}

// VariableOrder returns variable names in declaration order.
func (p *Program) VariableOrder() []string {
	return append([]string(nil), p.order...)
}

// Emit appends op to the operation list and returns its index.
func (p *Program) Emit(op Operation) int {
	p.Operations = append(p.Operations, op)
	return len(p.Operations) - 1
}

// InternFloat returns a Data referencing a de-duplicated float constant,
// appending a new pool entry only if no bit-exact match exists. Per
// spec.md §9's documented quirk, the constant's generated name keys off
// the decimal rendering of the bit-pattern reinterpreted as uint64 (see
// DESIGN.md's note on under-deduplication) rather than the float directly;
// the pool lookup itself still compares the float value bit-exactly.
func (p *Program) InternFloat(v float64) Data {
	bits := math.Float64bits(v)
	h := xxhash.Sum64(uint64Bytes(bits))
	for _, idx := range p.hashIndex[h] {
		if math.Float64bits(p.floatPool[idx].FloatVal.Value()) == bits {
			return p.floatPool[idx]
		}
	}
	d := Data{
		Kind:       DataLiteral,
		SourceKind: ast.FloatingPoint,
		FloatVal:   literal.NewFloat(v),
		HasFloat:   true,
		Name:       "@" + strconv.FormatUint(bits, 10),
	}
	idx := len(p.floatPool)
	p.floatPool = append(p.floatPool, d)
	p.hashIndex[h] = append(p.hashIndex[h], idx)
	return d
}

// InternString returns a Data referencing a de-duplicated string constant.
func (p *Program) InternString(s string) Data {
	h := xxhash.Sum64String(s) ^ stringSalt
	for _, idx := range p.hashIndex[h] {
		if p.stringPool[idx].StrVal == s {
			return p.stringPool[idx]
		}
	}
	d := Data{
		Kind:       DataLiteral,
		SourceKind: ast.String,
		StrVal:     s,
		HasStr:     true,
		Name:       "@str" + strconv.Itoa(len(p.stringPool)),
	}
	idx := len(p.stringPool)
	p.stringPool = append(p.stringPool, d)
	p.hashIndex[h] = append(p.hashIndex[h], idx)
	return d
}

// stringSalt keeps the string-constant hash bucket disjoint from the
// float-constant one, since both share p.hashIndex.
const stringSalt = 0x9e3779b97f4a7c15

func uint64Bytes(u uint64) []byte {
	bits := make([]byte, 8)
	for i := range bits {
		bits[i] = byte(u)
		u >>= 8
	}
	return bits
}
