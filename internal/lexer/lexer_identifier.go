package lexer

import "github.com/standardbeagle/asjs/internal/ast"

// specialIdentifiers lists Infinity/NaN/undefined (spec.md §4.2).
// scanIdentifier does not consult it: these names come out as plain
// Identifier tokens, and only __FILE__/__LINE__ are expanded in place.
var specialIdentifiers = map[string]bool{
	"Infinity": true, "NaN": true, "undefined": true,
}

func (l *Lexer) scanIdentifier() *ast.Node {
	pos := l.r.position()
	var runes []rune
	for {
		c := l.r.next()
		if c == eofRune || !isIdentifierPart(c) {
			if c != eofRune {
				l.r.unread(c)
			}
			break
		}
		runes = append(runes, c)
	}
	name := string(runes)

	switch name {
	case "__FILE__":
		n := l.tree.New(ast.String, pos)
		n.SetString(pos.Filename)
		return n
	case "__LINE__":
		n := l.tree.New(ast.Integer, pos)
		n.SetInteger(intLiteral(int64(pos.Line)))
		return n
	}

	n := l.tree.New(ast.Identifier, pos)
	n.SetString(name)
	return n
}
