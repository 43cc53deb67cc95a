package lexer

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/position"
)

// scanString reads a single- or double-quoted string literal, per spec.md
// §4.2 "Strings". quote is the delimiter already consumed by the caller.
func (l *Lexer) scanString(quote rune) *ast.Node {
	pos := l.r.position()
	var sb strings.Builder

	for {
		c := l.r.next()
		switch {
		case c == eofRune:
			l.sink.ReportAt(pos, diag.Error, diag.CodeUnterminatedString, "unterminated string literal")
			n := l.tree.New(ast.String, pos)
			n.SetString(sb.String())
			return n
		case c == quote:
			n := l.tree.New(ast.String, pos)
			n.SetString(sb.String())
			return n
		case isLineTerminator(c):
			l.r.unread(c)
			l.sink.ReportAt(pos, diag.Error, diag.CodeUnterminatedString, "unterminated string literal")
			n := l.tree.New(ast.String, pos)
			n.SetString(sb.String())
			return n
		case c == '\\':
			if r, ok := l.scanEscape(); ok {
				sb.WriteRune(r)
			}
		default:
			sb.WriteRune(c)
		}
	}
}

// scanEscape consumes an escape sequence's body (the backslash has already
// been read) and returns the rune it produces, or ok=false for a
// line-continuation (escaped line terminator), which contributes nothing.
func (l *Lexer) scanEscape() (rune, bool) {
	c := l.r.next()
	switch c {
	case eofRune:
		l.sink.Reportf(diag.Error, diag.CodeBadEscape, "unterminated escape sequence")
		return 0, false
	case '\'', '"', '`', '\\':
		return c, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	case '0':
		if next := l.r.peek(); next >= '0' && next <= '9' {
			return l.scanOctalEscape('0')
		}
		return 0, true
	case 'e':
		if l.opts.ExtendedEscapeSequences() {
			return 0x1B, true
		}
		l.sink.ReportAt(l.r.position(), diag.Error, diag.CodeExtendedFeatureDisabled, "\\e escape requires extended escape sequences")
		return 'e', true
	case 'x':
		return l.scanHexEscape(2)
	case 'u':
		return l.scanHexEscape(4)
	case 'U':
		if l.opts.ExtendedEscapeSequences() {
			return l.scanHexEscape(6)
		}
		l.sink.ReportAt(l.r.position(), diag.Error, diag.CodeExtendedFeatureDisabled, "\\U escape requires extended escape sequences")
		return 'U', true
	default:
		if isLineTerminator(c) {
			return 0, false // line continuation: backslash-newline vanishes
		}
		if c >= '1' && c <= '7' && l.opts.ExtendedEscapeSequences() {
			return l.scanOctalEscape(c)
		}
		l.sink.ReportAt(l.r.position(), diag.Error, diag.CodeBadEscape, "unrecognized escape sequence \\%c", c)
		return c, true
	}
}

func (l *Lexer) scanHexEscape(width int) (rune, bool) {
	pos := l.r.position()
	var digits []rune
	for i := 0; i < width; i++ {
		c := l.r.next()
		if !isHexDigitRune(c) {
			if c != eofRune {
				l.r.unread(c)
			}
			l.sink.ReportAt(pos, diag.Error, diag.CodeBadEscape, "expected %d hex digits in escape sequence", width)
			return 0xFFFD, true
		}
		digits = append(digits, c)
	}
	v, err := strconv.ParseInt(string(digits), 16, 32)
	if err != nil {
		l.sink.ReportAt(pos, diag.Error, diag.CodeBadEscape, "invalid hex escape sequence")
		return 0xFFFD, true
	}
	return rune(v), true
}

// scanOctalEscape reads up to two further octal digits after first (which
// the caller has already consumed), a legacy extended-escape form.
func (l *Lexer) scanOctalEscape(first rune) (rune, bool) {
	digits := []rune{first}
	for i := 0; i < 2; i++ {
		c := l.r.next()
		if c < '0' || c > '7' {
			if c != eofRune {
				l.r.unread(c)
			}
			break
		}
		digits = append(digits, c)
	}
	v, _ := strconv.ParseInt(string(digits), 8, 32)
	return rune(v), true
}

// scanTemplate reads a backtick-delimited template literal segment. isStart
// is true for the segment immediately after the opening backtick and false
// when resuming after a `${ expr }` hole has been consumed by the caller
// (spec.md §4.2 "Templates", get_next_template_token). The segment ends at
// a literal backtick (Template if isStart, else TemplateTail) or at a `${`
// marker (TemplateHead if isStart, else TemplateMiddle).
func (l *Lexer) scanTemplate(isStart bool) *ast.Node {
	pos := l.r.position()
	var sb strings.Builder

	for {
		c := l.r.next()
		switch {
		case c == eofRune:
			l.sink.ReportAt(pos, diag.Error, diag.CodeUnterminatedTemplate, "unterminated template literal")
			l.inTemplate = false
			return l.newTemplateNode(pos, sb.String(), isStart, true)
		case c == '`':
			l.inTemplate = false
			return l.newTemplateNode(pos, sb.String(), isStart, true)
		case c == '$' && l.r.peek() == '{':
			l.r.next()
			l.inTemplate = true
			return l.newTemplateNode(pos, sb.String(), isStart, false)
		case c == '\\':
			if r, ok := l.scanEscape(); ok {
				sb.WriteRune(r)
			}
		default:
			sb.WriteRune(c)
		}
	}
}

func (l *Lexer) newTemplateNode(pos position.Position, text string, isStart, closed bool) *ast.Node {
	var kind ast.Kind
	switch {
	case isStart && closed:
		kind = ast.Template
	case isStart && !closed:
		kind = ast.TemplateHead
	case !isStart && closed:
		kind = ast.TemplateTail
	default:
		kind = ast.TemplateMiddle
	}
	n := l.tree.New(kind, pos)
	n.SetString(text)
	return n
}
