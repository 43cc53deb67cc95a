package lexer

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/position"
)

// scanNumber reads a decimal, hex (0x), octal (0o), binary (0b), or legacy
// leading-zero octal number, per spec.md §4.2 "Numbers". Digit runs accept
// a single `_` separator between digits (never at start, end, or doubled).
func (l *Lexer) scanNumber() *ast.Node {
	pos := l.r.position()

	first := l.r.next()
	if first == '0' {
		if base, prefixLen := l.peekBasePrefix(); base != 0 {
			l.r.next() // consume the base letter (x/o/b)
			_ = prefixLen
			return l.scanBasedInteger(pos, base)
		}
		if l.opts.Octal() {
			if digits, ok := l.tryLegacyOctal(); ok {
				return l.finishInteger(pos, digits, 8)
			}
		}
	}
	l.r.unread(first)
	return l.scanDecimal(pos)
}

// peekBasePrefix reports the numeric base signalled by the character after
// a leading '0' (x/X→16, o/O→8, b/B→2), without consuming it.
func (l *Lexer) peekBasePrefix() (base int, width int) {
	c := l.r.peek()
	switch c {
	case 'x', 'X':
		return 16, 1
	case 'o', 'O':
		return 8, 1
	case 'b', 'B':
		return 2, 1
	default:
		return 0, 0
	}
}

func digitValue(c rune, base int) (int, bool) {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'z':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = int(c-'A') + 10
	default:
		return 0, false
	}
	if v >= base {
		return 0, false
	}
	return v, true
}

// scanBasedInteger reads a digit run for an explicit-base number, allowing
// single non-doubled underscore separators. An empty or malformed run
// (e.g. "0b__") reports CodeBadNumber and yields Integer -1, matching
// spec.md §8 scenario 7.
func (l *Lexer) scanBasedInteger(pos position.Position, base int) *ast.Node {
	var digits []rune
	lastWasUnderscore := false
	sawDigit := false
	for {
		c := l.r.next()
		if c == '_' {
			if !sawDigit || lastWasUnderscore {
				l.r.unread(c)
				break
			}
			lastWasUnderscore = true
			continue
		}
		if _, ok := digitValue(c, base); !ok {
			if c != eofRune {
				l.r.unread(c)
			}
			break
		}
		digits = append(digits, c)
		sawDigit = true
		lastWasUnderscore = false
	}

	if len(digits) == 0 || lastWasUnderscore {
		l.sink.ReportAt(pos, diag.Error, diag.CodeBadNumber, "malformed number literal")
		n := l.tree.New(ast.Integer, pos)
		n.SetInteger(intLiteral(-1))
		return n
	}

	v, err := strconv.ParseInt(string(digits), base, 64)
	if err != nil {
		l.sink.ReportAt(pos, diag.Error, diag.CodeBadNumber, "number literal out of range")
		n := l.tree.New(ast.Integer, pos)
		n.SetInteger(intLiteral(-1))
		return n
	}
	return l.finishInteger(pos, "", 0, v)
}

// tryLegacyOctal speculatively reads a leading-zero octal run; if an '8'
// or '9' appears it silently promotes the number to decimal by pushing
// back everything read and returning ok=false.
func (l *Lexer) tryLegacyOctal() (string, bool) {
	var digits []rune
	var all []rune
	for {
		c := l.r.next()
		if c >= '0' && c <= '9' {
			all = append(all, c)
			if c <= '7' {
				digits = append(digits, c)
				continue
			}
			// 8 or 9: not octal, push everything back for decimal scanning.
			for i := len(all) - 1; i >= 0; i-- {
				l.r.unread(all[i])
			}
			return "", false
		}
		if c != eofRune {
			l.r.unread(c)
		}
		break
	}
	if len(digits) == 0 {
		return "", false
	}
	return string(digits), true
}

func (l *Lexer) finishInteger(pos position.Position, octalDigits string, base int, precomputed ...int64) *ast.Node {
	var v int64
	if len(precomputed) > 0 {
		v = precomputed[0]
	} else {
		parsed, _ := strconv.ParseInt(octalDigits, base, 64)
		v = parsed
	}
	n := l.tree.New(ast.Integer, pos)
	n.SetInteger(intLiteral(v))
	l.checkTrailingLetter(n)
	return n
}

// scanDecimal reads a plain decimal integer or floating-point literal
// (optional '.', optional exponent, optional trailing 'n' big-integer
// marker, which is accepted and dropped — big-integer semantics are out
// of scope for the x86-64 backend).
func (l *Lexer) scanDecimal(pos position.Position) *ast.Node {
	var sb strings.Builder
	lastWasUnderscore := false
	sawDigit := false
	for {
		c := l.r.next()
		if c >= '0' && c <= '9' {
			sb.WriteRune(c)
			sawDigit = true
			lastWasUnderscore = false
			continue
		}
		if c == '_' && sawDigit && !lastWasUnderscore {
			lastWasUnderscore = true
			continue
		}
		if c != eofRune {
			l.r.unread(c)
		}
		break
	}

	isFloat := false
	if l.r.peek() == '.' {
		c := l.r.next()
		sb.WriteRune(c)
		isFloat = true
		for {
			c := l.r.next()
			if c >= '0' && c <= '9' {
				sb.WriteRune(c)
				continue
			}
			if c != eofRune {
				l.r.unread(c)
			}
			break
		}
	}

	if c := l.r.peek(); c == 'e' || c == 'E' {
		isFloat = true
		sb.WriteRune(l.r.next())
		if s := l.r.peek(); s == '+' || s == '-' {
			sb.WriteRune(l.r.next())
		}
		for {
			c := l.r.next()
			if c >= '0' && c <= '9' {
				sb.WriteRune(c)
				continue
			}
			if c != eofRune {
				l.r.unread(c)
			}
			break
		}
	}

	if l.r.peek() == 'n' {
		l.r.next() // drop the big-integer marker
	}

	if isFloat {
		v, _ := strconv.ParseFloat(sb.String(), 64)
		n := l.tree.New(ast.FloatingPoint, pos)
		n.SetFloat(floatLiteral(v))
		l.checkTrailingLetter(n)
		return n
	}

	v, _ := strconv.ParseInt(sb.String(), 10, 64)
	n := l.tree.New(ast.Integer, pos)
	n.SetInteger(intLiteral(v))
	l.checkTrailingLetter(n)
	return n
}

// checkTrailingLetter reports spec.md's "a number followed by a letter
// emits a diagnostic" without consuming the letter run, so the next
// NextToken call tokenizes it as a separate identifier (spec.md §8
// scenario 7: "123abc" → Integer 123 followed by the diagnostic).
func (l *Lexer) checkTrailingLetter(n *ast.Node) {
	if c := l.r.peek(); isIdentifierStart(c) && !isDecimalDigit(c) {
		l.sink.ReportAt(n.Position(), diag.Error, diag.CodeUnexpectedLetter, "unexpected letter after number literal")
	}
}
