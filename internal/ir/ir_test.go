package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/asjs/internal/literal"
)

func TestInternFloatDeduplicates(t *testing.T) {
	p := NewProgram()
	a := p.InternFloat(1.5)
	b := p.InternFloat(1.5)
	c := p.InternFloat(2.5)

	assert.Equal(t, a.Name, b.Name)
	assert.NotEqual(t, a.Name, c.Name)
	assert.Len(t, p.floatPool, 2)
}

func TestInternStringDeduplicates(t *testing.T) {
	p := NewProgram()
	a := p.InternString("hi")
	b := p.InternString("hi")
	c := p.InternString("bye")

	assert.Equal(t, a.Name, b.Name)
	assert.NotEqual(t, a.Name, c.Name)
	assert.Len(t, p.stringPool, 2)
}

func TestDeclareVariablePreservesOrder(t *testing.T) {
	p := NewProgram()
	p.DeclareVariable(Variable{Name: "b", Type: TypeInteger, Kind: VariableExtern})
	p.DeclareVariable(Variable{Name: "a", Type: TypeBoolean, Kind: VariableTemp})
	p.DeclareVariable(Variable{Name: "b", Type: TypeInteger, Kind: VariableExtern})

	assert.Equal(t, []string{"b", "a"}, p.VariableOrder())
}

func TestLiteralIntSmallestSize(t *testing.T) {
	d := LiteralInt(literal.NewInteger(200))
	assert.Equal(t, literal.Size8Unsigned, d.SmallestSize())
}

func TestVariableTypeSize(t *testing.T) {
	assert.Equal(t, 1, TypeBoolean.Size())
	assert.Equal(t, 8, TypeInteger.Size())
	assert.Equal(t, 8, TypeFloatingPoint.Size())
}
