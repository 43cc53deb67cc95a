package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/diag"
)

func newTestLexer(src string) (*Lexer, *diag.Sink) {
	sink := diag.NewSink(diag.Trace, nil)
	tree := ast.NewTree(sink)
	return New(src, "test.asjs", tree, DefaultOptions{}, sink), sink
}

// Spec scenario 5: a comment is skipped and a single-quoted string with a
// \t escape yields one String token.
func TestScanCommentThenEscapedString(t *testing.T) {
	l, sink := newTestLexer("/* comment */ 'he\\tllo'")
	tok := l.NextToken(true)
	require.Equal(t, ast.String, tok.Kind())
	assert.Equal(t, "he\tllo", tok.String())
	assert.Equal(t, 0, sink.ErrorCount())
}

// Spec scenario 6: a template literal's head, embedded identifier, and
// tail are produced across NextToken/NextTemplateToken calls.
func TestScanTemplateHeadAndTail(t *testing.T) {
	l, sink := newTestLexer("`Hi ${name}!`")

	head := l.NextToken(true)
	require.Equal(t, ast.TemplateHead, head.Kind())
	assert.Equal(t, "Hi ", head.String())

	ident := l.NextToken(false)
	require.Equal(t, ast.Identifier, ident.Kind())
	assert.Equal(t, "name", ident.String())

	brace := l.NextToken(false)
	require.Equal(t, ast.RightBrace, brace.Kind())

	tail := l.NextTemplateToken()
	require.Equal(t, ast.TemplateTail, tail.Kind())
	assert.Equal(t, "!", tail.String())

	assert.Equal(t, 0, sink.ErrorCount())
}

// Spec scenario 7: underscore-separated binary literals, a malformed
// binary literal, and a number directly followed by a letter.
func TestScanNumberLiterals(t *testing.T) {
	t.Run("binary with underscores", func(t *testing.T) {
		l, sink := newTestLexer("0b1010_0101")
		tok := l.NextToken(false)
		require.Equal(t, ast.Integer, tok.Kind())
		assert.Equal(t, int64(165), tok.Integer().Value())
		assert.Equal(t, 0, sink.ErrorCount())
	})

	t.Run("malformed binary", func(t *testing.T) {
		l, sink := newTestLexer("0b__")
		tok := l.NextToken(false)
		require.Equal(t, ast.Integer, tok.Kind())
		assert.Equal(t, int64(-1), tok.Integer().Value())
		assert.Equal(t, 1, sink.ErrorCount())
	})

	t.Run("number followed by letter", func(t *testing.T) {
		l, sink := newTestLexer("123abc")
		tok := l.NextToken(false)
		require.Equal(t, ast.Integer, tok.Kind())
		assert.Equal(t, int64(123), tok.Integer().Value())
		assert.Equal(t, 1, sink.ErrorCount())

		next := l.NextToken(false)
		require.Equal(t, ast.Identifier, next.Kind())
		assert.Equal(t, "abc", next.String())
	})
}

func TestScanOperatorsAndPunctuation(t *testing.T) {
	l, sink := newTestLexer("<= >>> ** ?? => ... in")
	kinds := []ast.Kind{ast.LessEqual, ast.ShiftRightUnsigned, ast.Power, ast.Coalesce, ast.Arrow, ast.Ellipsis, ast.Identifier}
	for _, want := range kinds {
		tok := l.NextToken(false)
		assert.Equal(t, want, tok.Kind())
	}
	assert.Equal(t, 0, sink.ErrorCount())
}

func TestScanRegexFallsBackToDivide(t *testing.T) {
	l, _ := newTestLexer("a / b")
	_ = l.NextToken(true) // identifier "a"
	tok := l.NextToken(false)
	assert.Equal(t, ast.Divide, tok.Kind())
}

func TestScanRegexLiteral(t *testing.T) {
	l, _ := newTestLexer("/abc/g")
	tok := l.NextToken(true)
	require.Equal(t, ast.RegularExpression, tok.Kind())
}
