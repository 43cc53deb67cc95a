package lexer

import (
	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/position"
)

// unicodeOperators maps spec.md §4.2's non-ASCII operator synonyms to the
// Kind an equivalent ASCII sequence would produce: U+2208 (∈) like `in`,
// U+2227 (∧) like `&&`, U+2248 (≈) like `~=`, U+2254 (≔) like `:=`/`=`,
// U+00D7 (×) like `*`.
var unicodeOperators = map[rune]ast.Kind{
	0x2208: ast.In,
	0x2227: ast.LogicalAnd,
	0x2248: ast.AlmostEqual,
	0x2254: ast.Assignment,
	0x00D7: ast.Multiply,
}

// scanOperator reads the longest punctuation/operator token starting at the
// current position (spec.md §4.2 "Operators and punctuation"), or — when
// regexpAllowed and the token starts with `/` — speculatively scans a
// regular expression literal first.
func (l *Lexer) scanOperator(regexpAllowed bool) *ast.Node {
	pos := l.r.position()
	c := l.r.next()

	if c == '/' && regexpAllowed {
		if n := l.tryScanRegex(pos); n != nil {
			return n
		}
	}

	if kind, ok := unicodeOperators[c]; ok {
		n := l.tree.New(kind, pos)
		return n
	}

	switch c {
	case '(':
		return l.tree.New(ast.LeftParen, pos)
	case ')':
		return l.tree.New(ast.RightParen, pos)
	case '{':
		return l.tree.New(ast.LeftBrace, pos)
	case '}':
		return l.tree.New(ast.RightBrace, pos)
	case '[':
		return l.tree.New(ast.LeftBracket, pos)
	case ']':
		return l.tree.New(ast.RightBracket, pos)
	case ',':
		return l.tree.New(ast.Comma, pos)
	case ';':
		return l.tree.New(ast.Semicolon, pos)
	case '~':
		return l.tree.New(ast.BitwiseNot, pos)
	case '?':
		if l.r.peek() == '?' {
			l.r.next()
			return l.tree.New(ast.Coalesce, pos)
		}
		return l.tree.New(ast.QuestionMark, pos)
	case ':':
		if l.r.peek() == '=' && l.opts.ExtendedOperators()&ExtendedOperatorAngleNotEqual != 0 {
			l.r.next()
			return l.tree.New(ast.Assignment, pos)
		}
		return l.tree.New(ast.Colon, pos)
	case '.':
		if l.r.peek() == '.' {
			l.r.next()
			if l.r.peek() == '.' {
				l.r.next()
				return l.tree.New(ast.Ellipsis, pos)
			}
			l.r.unread('.')
		}
		return l.tree.New(ast.Dot, pos)
	case '+':
		switch l.r.peek() {
		case '+':
			l.r.next()
			return l.tree.New(ast.Increment, pos)
		case '=':
			l.r.next()
			return l.tree.New(ast.AssignmentAdd, pos)
		}
		return l.tree.New(ast.Add, pos)
	case '-':
		switch l.r.peek() {
		case '-':
			l.r.next()
			return l.tree.New(ast.Decrement, pos)
		case '=':
			l.r.next()
			return l.tree.New(ast.AssignmentSubtract, pos)
		}
		return l.tree.New(ast.Subtract, pos)
	case '*':
		switch l.r.peek() {
		case '*':
			l.r.next()
			if l.r.peek() == '=' {
				l.r.next()
				return l.tree.New(ast.AssignmentPower, pos)
			}
			return l.tree.New(ast.Power, pos)
		case '=':
			l.r.next()
			return l.tree.New(ast.AssignmentMultiply, pos)
		}
		return l.tree.New(ast.Multiply, pos)
	case '/':
		if l.r.peek() == '=' {
			l.r.next()
			return l.tree.New(ast.AssignmentDivide, pos)
		}
		return l.tree.New(ast.Divide, pos)
	case '%':
		switch l.r.peek() {
		case '=':
			l.r.next()
			return l.tree.New(ast.AssignmentModulo, pos)
		case '>':
			l.r.next()
			return l.tree.New(ast.RotateRight, pos)
		}
		return l.tree.New(ast.Modulo, pos)
	case '&':
		switch l.r.peek() {
		case '&':
			l.r.next()
			if l.r.peek() == '=' {
				l.r.next()
				return l.tree.New(ast.AssignmentLogicalAnd, pos)
			}
			return l.tree.New(ast.LogicalAnd, pos)
		case '=':
			l.r.next()
			return l.tree.New(ast.AssignmentBitwiseAnd, pos)
		}
		return l.tree.New(ast.BitwiseAnd, pos)
	case '|':
		switch l.r.peek() {
		case '|':
			l.r.next()
			if l.r.peek() == '=' {
				l.r.next()
				return l.tree.New(ast.AssignmentLogicalOr, pos)
			}
			return l.tree.New(ast.LogicalOr, pos)
		case '=':
			l.r.next()
			return l.tree.New(ast.AssignmentBitwiseOr, pos)
		}
		return l.tree.New(ast.BitwiseOr, pos)
	case '^':
		switch l.r.peek() {
		case '^':
			l.r.next()
			if l.r.peek() == '=' {
				l.r.next()
				return l.tree.New(ast.AssignmentLogicalXor, pos)
			}
			return l.tree.New(ast.LogicalXor, pos)
		case '=':
			l.r.next()
			return l.tree.New(ast.AssignmentBitwiseXor, pos)
		}
		return l.tree.New(ast.BitwiseXor, pos)
	case '!':
		switch l.r.peek() {
		case '=':
			l.r.next()
			if l.r.peek() == '=' {
				l.r.next()
				return l.tree.New(ast.StrictlyNotEqual, pos)
			}
			return l.tree.New(ast.NotEqual, pos)
		}
		return l.tree.New(ast.LogicalNot, pos)
	case '=':
		switch l.r.peek() {
		case '=':
			l.r.next()
			if l.r.peek() == '=' {
				l.r.next()
				return l.tree.New(ast.StrictlyEqual, pos)
			}
			return l.tree.New(ast.Equal, pos)
		case '>':
			l.r.next()
			return l.tree.New(ast.Arrow, pos)
		}
		if l.opts.ExtendedOperators()&ExtendedOperatorDisablePlainAssign != 0 {
			l.sink.ReportAt(pos, diag.Error, diag.CodeExtendedFeatureDisabled, "plain `=` assignment is disabled by the active option set")
		}
		return l.tree.New(ast.Assignment, pos)
	case '<':
		switch l.r.peek() {
		case '<':
			l.r.next()
			if l.r.peek() == '=' {
				l.r.next()
				return l.tree.New(ast.AssignmentShiftLeft, pos)
			}
			return l.tree.New(ast.ShiftLeft, pos)
		case '=':
			l.r.next()
			if l.r.peek() == '>' {
				l.r.next()
				return l.tree.New(ast.Compare, pos)
			}
			return l.tree.New(ast.LessEqual, pos)
		case '%':
			l.r.next()
			return l.tree.New(ast.RotateLeft, pos)
		case '>':
			if l.opts.ExtendedOperators()&ExtendedOperatorAngleNotEqual != 0 {
				l.r.next()
				return l.tree.New(ast.NotEqual, pos)
			}
		}
		return l.tree.New(ast.Less, pos)
	case '>':
		switch l.r.peek() {
		case '>':
			l.r.next()
			switch l.r.peek() {
			case '>':
				l.r.next()
				if l.r.peek() == '=' {
					l.r.next()
					return l.tree.New(ast.AssignmentShiftRightUnsigned, pos)
				}
				return l.tree.New(ast.ShiftRightUnsigned, pos)
			case '=':
				l.r.next()
				return l.tree.New(ast.AssignmentShiftRight, pos)
			}
			return l.tree.New(ast.ShiftRight, pos)
		case '=':
			l.r.next()
			return l.tree.New(ast.GreaterEqual, pos)
		}
		return l.tree.New(ast.Greater, pos)
	case eofRune:
		return l.tree.New(ast.EOF, pos)
	default:
		l.sink.ReportAt(pos, diag.Error, diag.CodeUnknownPunctuation, "unknown punctuation character %q", c)
		return l.tree.New(ast.Empty, pos)
	}
}

// maxRegexScan bounds the speculative regular-expression scan so a stray
// `/` early in a file can't force an O(file size) lookahead (spec.md §4.2
// "Regular expressions").
const maxRegexScan = 1024

// tryScanRegex speculatively scans a `/.../ flags` regular expression
// literal. On success it returns the RegularExpression node with the
// reader positioned after the flags; on failure (no unescaped closing `/`
// within maxRegexScan runes, or a line terminator reached first) it rewinds
// the reader to just after the opening `/` and returns nil so the caller
// falls back to Divide.
func (l *Lexer) tryScanRegex(pos position.Position) *ast.Node {
	var consumed []rune
	inClass := false
	closed := false

	for len(consumed) < maxRegexScan {
		c := l.r.next()
		if c == eofRune || isLineTerminator(c) {
			if c != eofRune {
				l.r.unread(c)
			}
			break
		}
		consumed = append(consumed, c)
		switch {
		case c == '\\':
			if nc := l.r.next(); nc != eofRune {
				consumed = append(consumed, nc)
			}
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			closed = true
		}
		if closed {
			break
		}
	}

	if !closed {
		for i := len(consumed) - 1; i >= 0; i-- {
			l.r.unread(consumed[i])
		}
		return nil
	}

	body := consumed[:len(consumed)-1]
	var flags []rune
	for {
		c := l.r.next()
		if c == eofRune || !isIdentifierPart(c) {
			if c != eofRune {
				l.r.unread(c)
			}
			break
		}
		flags = append(flags, c)
	}

	n := l.tree.New(ast.RegularExpression, pos)
	n.SetString(string(body) + "\x00" + string(flags))
	return n
}
