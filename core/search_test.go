package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTerms(t *testing.T) {
	tests := []struct {
		q    string
		want []string
	}{
		{q: "", want: nil},
		{q: "  export   pdf ", want: []string{"export", "pdf"}},
		{q: `"export as pdf" fast`, want: []string{"export as pdf", "fast"}},
		{q: `fast 'single quoted'`, want: []string{"fast", "single quoted"}},
		{q: `"unterminated phrase`, want: []string{"unterminated phrase"}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchTerms(tt.q))
		})
	}
}

func TestMatchesTerms(t *testing.T) {
	tests := []struct {
		name   string
		terms  []string
		values []string
		want   bool
	}{
		{name: "no terms", terms: nil, values: []string{"anything"}, want: true},
		{name: "case insensitive", terms: []string{"EXPORT"}, values: []string{"Export reports"}, want: true},
		{name: "every term", terms: []string{"export", "pdf"}, values: []string{"Export reports", "as PDF"}, want: true},
		{name: "missing term", terms: []string{"export", "csv"}, values: []string{"Export reports", "as PDF"}, want: false},
		{name: "no values", terms: []string{"export"}, values: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesTerms(tt.terms, tt.values...))
		})
	}
}
