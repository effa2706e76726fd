package meta

import (
	"strings"
	"unicode/utf8"

	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

// Line is one line of the metadata section together with a read position.
// It is a value: Next returns the advanced line and leaves the receiver as is.
type Line struct {
	text string
	pos  int // byte offset into text
}

// NewLine trims surrounding whitespace and positions the cursor at the start.
func NewLine(text string) Line {
	return Line{text: strings.TrimSpace(text)}
}

// Text returns the whole trimmed line.
func (l Line) Text() string { return l.text }

// Rest returns the unconsumed part of the line.
func (l Line) Rest() string { return l.text[l.pos:] }

// AtEnd reports whether every character of the line has been consumed.
func (l Line) AtEnd() bool { return l.pos >= len(l.text) }

func (l Line) peek() (rune, int) {
	if l.AtEnd() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.text[l.pos:])
}

func (l Line) in(set string) bool {
	r, size := l.peek()
	return size > 0 && strings.ContainsRune(set, r)
}

func (l Line) notIn(set string) bool {
	r, size := l.peek()
	return size > 0 && !strings.ContainsRune(set, r)
}

// Next extracts the field at the cursor.
//
// A field starting with one of quotes runs to the matching quote and may
// contain separators; the delimiters are dropped and nothing inside is
// unescaped. Back to back quoted segments ("a""b") are joined. Any other
// field runs to the next separator. Separators following the field are
// skipped. At the end of the line Next returns "" and the line unchanged.
func (l Line) Next(separators, quotes string) (string, Line, error) {
	var sb strings.Builder
	if l.in(quotes) {
		open, size := l.peek()
		q := string(open)
		for l.in(q) {
			l.pos += size
			start := l.pos
			for l.notIn(q) {
				_, n := l.peek()
				l.pos += n
			}
			sb.WriteString(l.text[start:l.pos])
			if l.AtEnd() {
				return "", l, &LineError{Err: errs.ErrMalformedLine, Line: l.text, Reason: "unbalanced quotes"}
			}
			l.pos += size
		}
	} else {
		start := l.pos
		for l.notIn(separators) {
			_, n := l.peek()
			l.pos += n
		}
		sb.WriteString(l.text[start:l.pos])
	}

	for l.in(separators) {
		_, n := l.peek()
		l.pos += n
	}
	return sb.String(), l, nil
}

// Field is Next for fields that must be present: it fails with a malformed
// line error when the line is already exhausted.
func (l Line) Field(separators, quotes string) (string, Line, error) {
	if l.AtEnd() {
		return "", l, &LineError{Err: errs.ErrMalformedLine, Line: l.text, Reason: "too few fields"}
	}
	return l.Next(separators, quotes)
}
