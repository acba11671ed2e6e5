package sql

import (
	"strings"
	"unicode"
)

// rowKeywords lead statements that produce a result set.
var rowKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"SHOW":    true,
	"VALUES":  true,
	"TABLE":   true,
	"EXPLAIN": true,
}

// ReturnsRows reports whether the statement yields rows rather than an affected count.
// DML with a RETURNING clause counts as row-returning.
func ReturnsRows(sqlQuery string) bool {
	words := keywords(sqlQuery)
	if len(words) == 0 {
		return false
	}
	if rowKeywords[words[0]] {
		return true
	}
	for _, w := range words[1:] {
		if w == "RETURNING" {
			return true
		}
	}
	return false
}

// Keyword returns the upper-cased leading keyword, or "" for empty input.
func Keyword(sqlQuery string) string {
	words := keywords(sqlQuery)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

// keywords lists the bare words of a statement, upper-cased, in order.
// Literals, quoted identifiers and comments contribute nothing.
func keywords(sqlQuery string) []string {
	var (
		words   []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToUpper(current.String()))
			current.Reset()
		}
	}

	s := newScanner(sqlQuery)
	prevEnd := 0
	for s.next() {
		if s.pos != prevEnd {
			// A comment was skipped.
			flush()
		}
		prevEnd = s.end
		if s.end-s.pos != 1 {
			// Literal or quoted unit.
			flush()
			continue
		}
		r := rune(s.tok)
		if r == '_' || unicode.IsLetter(r) || (current.Len() > 0 && unicode.IsDigit(r)) {
			current.WriteByte(s.tok)
			continue
		}
		flush()
	}
	flush()
	return words
}
