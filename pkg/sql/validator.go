// Package sql provides helpers for the generated SQL text: fence cleanup,
// statement normalization and classification.
package sql

import (
	"errors"
	"strings"
)

var (
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

	// ErrEmptyStatement indicates nothing executable remained after normalization.
	ErrEmptyStatement = errors.New("empty SQL statement")
)

// ValidateAndNormalize trims the statement, strips one trailing semicolon and
// rejects input that still holds a statement separator.
//
// Semicolons inside string literals, quoted identifiers, dollar-quoted bodies
// and comments are not separators.
func ValidateAndNormalize(sqlQuery string) (string, error) {
	sqlQuery = strings.TrimSpace(sqlQuery)
	if strings.TrimSpace(stripComments(sqlQuery)) == "" {
		return "", ErrEmptyStatement
	}

	separators := scanSeparators(sqlQuery)
	switch len(separators) {
	case 0:
		return sqlQuery, nil
	case 1:
		pos := separators[0]
		if strings.TrimSpace(stripComments(sqlQuery[pos+1:])) != "" {
			return "", ErrMultipleStatements
		}
		normalized := strings.TrimSpace(sqlQuery[:pos])
		if strings.TrimSpace(stripComments(normalized)) == "" {
			return "", ErrEmptyStatement
		}
		return normalized, nil
	default:
		return "", ErrMultipleStatements
	}
}

// scanSeparators returns the byte offsets of semicolons that sit outside
// literals and comments.
func scanSeparators(sqlQuery string) []int {
	var positions []int
	s := newScanner(sqlQuery)
	for s.next() {
		if s.tok == ';' {
			positions = append(positions, s.pos)
		}
	}
	return positions
}

// stripComments removes line and block comments, leaving literals intact.
func stripComments(sqlQuery string) string {
	var b strings.Builder
	s := newScanner(sqlQuery)
	for s.next() {
		b.WriteString(sqlQuery[s.pos:s.end])
	}
	return b.String()
}

// scanner walks SQL text one significant unit at a time. A unit is a single
// byte of plain text, or a whole literal, quoted identifier or dollar-quoted
// body. Comments are skipped entirely.
type scanner struct {
	src string
	off int

	pos int  // start of the current unit
	end int  // end of the current unit
	tok byte // first byte of the current unit
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func (s *scanner) next() bool {
	for s.off < len(s.src) {
		start := s.off
		c := s.src[s.off]

		switch {
		case c == '-' && s.peek(1) == '-':
			s.skipLineComment()
			continue
		case c == '/' && s.peek(1) == '*':
			s.skipBlockComment()
			continue
		case c == '\'':
			s.skipQuoted('\'', s.escapeStringAt(start))
		case c == '"':
			s.skipQuoted('"', false)
		case c == '$':
			if tag, ok := s.dollarTag(); ok {
				s.skipDollarBody(tag)
			} else {
				s.off++
			}
		default:
			s.off++
		}

		s.pos, s.end, s.tok = start, s.off, c
		return true
	}
	return false
}

func (s *scanner) peek(n int) byte {
	if s.off+n < len(s.src) {
		return s.src[s.off+n]
	}
	return 0
}

func (s *scanner) skipLineComment() {
	idx := strings.IndexByte(s.src[s.off:], '\n')
	if idx < 0 {
		s.off = len(s.src)
		return
	}
	s.off += idx + 1
}

func (s *scanner) skipBlockComment() {
	depth := 0
	for s.off < len(s.src) {
		switch {
		case s.src[s.off] == '/' && s.peek(1) == '*':
			depth++
			s.off += 2
		case s.src[s.off] == '*' && s.peek(1) == '/':
			depth--
			s.off += 2
			if depth == 0 {
				return
			}
		default:
			s.off++
		}
	}
}

// escapeStringAt reports whether the quote at off opens an E'...' string.
// An E that ends a longer word, as in "somE'x'", is not a prefix.
func (s *scanner) escapeStringAt(off int) bool {
	if off == 0 || (s.src[off-1] != 'E' && s.src[off-1] != 'e') {
		return false
	}
	return off == 1 || !isWordByte(s.src[off-2])
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

// skipQuoted consumes a quoted run. Doubled quotes stay inside. Backslash
// escapes only exist in E'...' strings: with standard_conforming_strings on,
// a backslash in a plain literal is an ordinary character.
func (s *scanner) skipQuoted(quote byte, backslashEscapes bool) {
	s.off++
	for s.off < len(s.src) {
		c := s.src[s.off]
		switch {
		case c == '\\' && backslashEscapes:
			s.off += 2
		case c == quote && s.peek(1) == quote:
			s.off += 2
		case c == quote:
			s.off++
			return
		default:
			s.off++
		}
	}
	if s.off > len(s.src) {
		s.off = len(s.src)
	}
}

// dollarTag reports whether a dollar-quote opener ($$ or $tag$) starts at the cursor.
func (s *scanner) dollarTag() (string, bool) {
	rest := s.src[s.off+1:]
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '$' {
			return s.src[s.off : s.off+i+2], true
		}
		isIdent := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9')
		if !isIdent {
			return "", false
		}
	}
	return "", false
}

func (s *scanner) skipDollarBody(tag string) {
	s.off += len(tag)
	idx := strings.Index(s.src[s.off:], tag)
	if idx < 0 {
		s.off = len(s.src)
		return
	}
	s.off += idx + len(tag)
}
