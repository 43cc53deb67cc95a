package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStartsAtOne(t *testing.T) {
	p := New("main.js")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.PageLine)
	assert.Equal(t, 1, p.Paragraph)
	assert.Equal(t, 1, p.Line)
	assert.Equal(t, 1, p.Column)
}

func TestNewLineResetsColumn(t *testing.T) {
	p := New("main.js")
	p = p.NewColumn().NewColumn()
	assert.Equal(t, 3, p.Column)

	p = p.NewLine()
	assert.Equal(t, 2, p.Line)
	assert.Equal(t, 1, p.Column)
}

func TestNewPageResetsPageLine(t *testing.T) {
	p := New("main.js")
	p = p.NewLine().NewLine()
	p = p.NewPage()
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 1, p.PageLine)
	assert.Equal(t, 3, p.Line, "line counter is global, unaffected by page breaks")
}

func TestEqualIsFieldWise(t *testing.T) {
	a := New("a.js")
	b := New("a.js")
	assert.True(t, a.Equal(b))

	b = b.NewColumn()
	assert.False(t, a.Equal(b))
}

func TestString(t *testing.T) {
	p := New("a.js").NewLine().NewLine().NewColumn()
	assert.Equal(t, "a.js:3:2", p.String())
}

func TestStringUnknown(t *testing.T) {
	var p Position
	assert.Equal(t, "<unknown>", p.String())
}
