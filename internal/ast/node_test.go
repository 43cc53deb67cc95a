package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/literal"
	"github.com/standardbeagle/asjs/internal/position"
)

func TestIntegerPayloadRoundTrips(t *testing.T) {
	tr := NewTree(nil)
	n := tr.New(Integer, position.New("x.js"))
	n.SetInteger(literal.NewInteger(42))
	assert.Equal(t, int64(42), n.Integer().Value())
}

func TestPayloadSetterPanicsOnWrongKind(t *testing.T) {
	tr := NewTree(nil)
	n := tr.New(String, position.New("x.js"))
	assert.Panics(t, func() { n.SetInteger(literal.NewInteger(1)) })
}

func TestAppendChildAttachesAndOrders(t *testing.T) {
	tr := NewTree(nil)
	parent := tr.New(DirectiveList, position.Position{})
	a := tr.New(Integer, position.Position{})
	b := tr.New(Integer, position.Position{})
	parent.AppendChild(a)
	parent.AppendChild(b)

	require.Equal(t, 2, parent.ChildCount())
	assert.Same(t, a, parent.Child(0))
	assert.Same(t, b, parent.Child(1))
	assert.Equal(t, 0, a.Offset())
	assert.Equal(t, 1, b.Offset())
	assert.Same(t, parent, a.Parent())
}

func TestAppendChildRejectsAlreadyAttached(t *testing.T) {
	tr := NewTree(nil)
	parent := tr.New(DirectiveList, position.Position{})
	other := tr.New(DirectiveList, position.Position{})
	child := tr.New(Integer, position.Position{})
	parent.AppendChild(child)
	assert.Panics(t, func() { other.AppendChild(child) })
}

func TestDeleteChildDetachesAndReindexes(t *testing.T) {
	tr := NewTree(nil)
	parent := tr.New(DirectiveList, position.Position{})
	a := tr.New(Integer, position.Position{})
	b := tr.New(Integer, position.Position{})
	c := tr.New(Integer, position.Position{})
	parent.AppendChild(a)
	parent.AppendChild(b)
	parent.AppendChild(c)

	removed := parent.DeleteChild(0)
	assert.Same(t, a, removed)
	assert.Nil(t, removed.Parent())
	require.Equal(t, 2, parent.ChildCount())
	assert.Equal(t, 0, b.Offset())
	assert.Equal(t, 1, c.Offset())
}

func TestReplaceWith(t *testing.T) {
	tr := NewTree(nil)
	parent := tr.New(DirectiveList, position.Position{})
	a := tr.New(Integer, position.Position{})
	parent.AppendChild(a)

	replacement := tr.New(String, position.Position{})
	replacement.SetString("x")
	a.ReplaceWith(replacement)

	assert.Nil(t, a.Parent())
	assert.Same(t, replacement, parent.Child(0))
}

func TestFindFirstChildAndDescendent(t *testing.T) {
	tr := NewTree(nil)
	root := tr.New(DirectiveList, position.Position{})
	inner := tr.New(DirectiveList, position.Position{})
	leaf := tr.New(Integer, position.Position{})
	inner.AppendChild(leaf)
	root.AppendChild(inner)

	assert.Same(t, inner, root.FindFirstChild(DirectiveList))
	assert.Nil(t, root.FindFirstChild(String))
	assert.Same(t, leaf, root.FindDescendent(Integer))
}

func TestLockRejectsMutation(t *testing.T) {
	tr := NewTree(nil)
	parent := tr.New(DirectiveList, position.Position{})
	child := tr.New(Integer, position.Position{})

	guard := NewLockGuard(parent)
	assert.Panics(t, func() { parent.AppendChild(child) })
	guard.Unlock()
	assert.NotPanics(t, func() { parent.AppendChild(child) })
}

func TestUnbalancedUnlockPanics(t *testing.T) {
	tr := NewTree(nil)
	n := tr.New(Integer, position.Position{})
	assert.Panics(t, func() { n.Unlock() })
}

func TestFlagValidOnKind(t *testing.T) {
	tr := NewTree(nil)
	catchNode := tr.New(Catch, position.Position{})
	catchNode.SetFlag(CatchTyped, true)
	assert.True(t, catchNode.Flag(CatchTyped))

	intNode := tr.New(Integer, position.Position{})
	assert.Panics(t, func() { intNode.SetFlag(CatchTyped, true) })
}

func TestAttributeExclusionGroup(t *testing.T) {
	tr := NewTree(nil)
	fn := tr.New(Function, position.Position{})

	assert.True(t, fn.SetAttribute(Public))
	assert.False(t, fn.SetAttribute(Private), "conflicts with already-set Public")
	assert.True(t, fn.Attribute(Public))
	assert.False(t, fn.Attribute(Private))
}

func TestAttributeExceptionPairsAllowed(t *testing.T) {
	tr := NewTree(nil)
	fn := tr.New(Function, position.Position{})

	assert.True(t, fn.SetAttribute(Native))
	assert.True(t, fn.SetAttribute(Constructor))
	assert.True(t, fn.Attribute(Native))
	assert.True(t, fn.Attribute(Constructor))

	fn2 := tr.New(Function, position.Position{})
	assert.True(t, fn2.SetAttribute(Static))
	assert.True(t, fn2.SetAttribute(Inline))
}

func TestCompareStrictRequiresSameKind(t *testing.T) {
	tr := NewTree(nil)
	i := tr.New(Integer, position.Position{})
	i.SetInteger(literal.NewInteger(1))
	f := tr.New(FloatingPoint, position.Position{})
	f.SetFloat(literal.NewFloat(1))

	assert.Equal(t, literal.Unordered, i.Compare(f, Strict))
}

func TestCompareLooseCoercesNumeric(t *testing.T) {
	tr := NewTree(nil)
	i := tr.New(Integer, position.Position{})
	i.SetInteger(literal.NewInteger(1))
	tru := tr.New(True, position.Position{})

	assert.Equal(t, literal.Equal, i.Compare(tru, Loose))
}

func TestCompareOnNonLiteralPanics(t *testing.T) {
	tr := NewTree(nil)
	a := tr.New(DirectiveList, position.Position{})
	b := tr.New(DirectiveList, position.Position{})
	assert.Panics(t, func() { a.Compare(b, Strict) })
}

func TestToIntegerFromString(t *testing.T) {
	tr := NewTree(nil)
	s := tr.New(String, position.Position{})
	s.SetString("0x1F")
	s.ToInteger()
	assert.Equal(t, Integer, s.Kind())
	assert.Equal(t, int64(31), s.Integer().Value())
}

func TestToStringFromInteger(t *testing.T) {
	tr := NewTree(nil)
	i := tr.New(Integer, position.Position{})
	i.SetInteger(literal.NewInteger(42))
	i.ToString()
	assert.Equal(t, String, i.Kind())
	assert.Equal(t, "42", i.String())
}

func TestToBooleanTypeOnly(t *testing.T) {
	tr := NewTree(nil)
	zero := tr.New(Integer, position.Position{})
	zero.SetInteger(literal.NewInteger(0))
	v, ok := zero.ToBooleanTypeOnly()
	require.True(t, ok)
	assert.False(t, v)
}

func TestDumpRendersTree(t *testing.T) {
	tr := NewTree(nil)
	root := tr.New(DirectiveList, position.Position{})
	a := tr.New(Integer, position.Position{})
	a.SetInteger(literal.NewInteger(1))
	root.AppendChild(a)

	out := root.Dump()
	assert.Contains(t, out, "DirectiveList")
	assert.Contains(t, out, "Integer 1")
}
