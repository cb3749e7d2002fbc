package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// SearchTerms splits a search query on whitespace, keeping quoted phrases together.
func SearchTerms(q string) []string {
	var (
		terms   []string
		current strings.Builder
		quote   rune
	)
	flush := func() {
		if current.Len() > 0 {
			terms = append(terms, current.String())
			current.Reset()
		}
	}
	for _, r := range q {
		switch {
		case quote != 0 && r == quote:
			quote = 0
			flush()
		case quote == 0 && (r == '"' || r == '\''):
			flush()
			quote = r
		case quote == 0 && unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return terms
}

// Fold returns the case-folded form of s used for case-insensitive matching.
// Casers are stateful, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// MatchesTerms reports whether every term is contained (case-insensitively) in at least one of values.
func MatchesTerms(terms []string, values ...string) bool {
	for _, term := range terms {
		t := Fold(term)
		var found bool
		for _, v := range values {
			if strings.Contains(Fold(v), t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
