// Package lexer turns UTF-8 source text into AST leaf nodes: identifiers,
// literals, operators, and the contextual regular-expression and
// template-literal sublanguages (spec.md §4.2).
package lexer

import (
	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/diag"
)

// Lexer wraps a character source and an option registry, producing AST
// leaf nodes one token at a time (spec.md §4.2's "get_next_token" contract).
type Lexer struct {
	r    *reader
	opts Options
	tree *ast.Tree
	sink *diag.Sink

	// inTemplate marks that the next get_next_template_token call should
	// resume scanning a template literal rather than start a new token.
	inTemplate bool
}

// New returns a Lexer reading src (attributed to filename for diagnostics
// and positions), tokenizing against tree's arena and reporting through
// sink. A nil sink falls back to diag.Default; a nil opts falls back to
// DefaultOptions.
func New(src, filename string, tree *ast.Tree, opts Options, sink *diag.Sink) *Lexer {
	if opts == nil {
		opts = DefaultOptions{}
	}
	if sink == nil {
		sink = diag.Default
	}
	return &Lexer{r: newReader(src, filename), opts: opts, tree: tree, sink: sink}
}

func (l *Lexer) newNode(k ast.Kind) *ast.Node {
	return l.tree.New(k, l.r.position())
}

// NextToken returns the next token node. regexpAllowed tells the lexer
// whether a leading `/` should be speculatively scanned as a regular
// expression (true in expression-start position) or tokenized as divide.
func (l *Lexer) NextToken(regexpAllowed bool) *ast.Node {
	for {
		l.skipWhitespace()
		if l.skipComment() {
			continue
		}
		break
	}

	pos := l.r.position()
	c := l.r.next()

	switch {
	case c == eofRune:
		return l.tree.New(ast.EOF, pos)
	case c == '\'' || c == '"':
		return l.scanString(c)
	case c == '`':
		return l.scanTemplate(true)
	case isIdentifierStart(c):
		l.r.unread(c)
		return l.scanIdentifier()
	case isDecimalDigit(c):
		l.r.unread(c)
		return l.scanNumber()
	case c == '.' :
		if next := l.r.peek(); isDecimalDigit(next) {
			l.r.unread(c)
			return l.scanNumber()
		}
		l.r.unread(c)
		return l.scanOperator(regexpAllowed)
	default:
		l.r.unread(c)
		return l.scanOperator(regexpAllowed)
	}
}

// NextTemplateToken resumes scanning a template literal after the parser
// has consumed a `${ expr }` hole (spec.md §4.2 "Templates").
func (l *Lexer) NextTemplateToken() *ast.Node {
	return l.scanTemplate(false)
}

func (l *Lexer) skipWhitespace() {
	for {
		c := l.r.next()
		if c == eofRune {
			return
		}
		if !isWhitespace(c) {
			l.r.unread(c)
			return
		}
	}
}

// skipComment consumes a `//` or `/* */` comment if present and reports
// whether one was found (callers loop to skip whitespace again after).
func (l *Lexer) skipComment() bool {
	c := l.r.next()
	if c != '/' {
		l.r.unread(c)
		return false
	}
	n := l.r.next()
	switch n {
	case '/':
		for {
			c := l.r.next()
			if c == eofRune || isLineTerminator(c) {
				if c != eofRune {
					l.r.unread(c)
				}
				return true
			}
		}
	case '*':
		for {
			c := l.r.next()
			if c == eofRune {
				return true
			}
			if c == '*' {
				if l.r.peek() == '/' {
					l.r.next()
					return true
				}
			}
		}
	default:
		l.r.unread(n)
		l.r.unread(c)
		return false
	}
}
