// Package extract lifts WITH clauses and derived tables out of a statement.
//
// Both extractors work on the lossless token stream, so string literals,
// quoted identifiers and comments never confuse paren depth or keyword
// detection. A miss is not an error: the input comes back unchanged.
package extract

import (
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
	"github.com/leapstack-labs/sqlsplit/pkg/lexer"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// DefaultComplexityKeywords are the phrases that make a derived table worth
// extracting.
var DefaultComplexityKeywords = []string{"JOIN", "GROUP BY", "HAVING", "UNION", "ORDER BY"}

type options struct {
	dialect    *dialect.Dialect
	phrases    []string
	complexity [][]token.Token
	reserved   []string
}

// Option configures the extractors.
type Option func(*options)

// WithDialect selects the dialect used to tokenize statements.
func WithDialect(d *dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// WithComplexityKeywords replaces DefaultComplexityKeywords. Each phrase is
// one or more words matched as consecutive tokens, case-insensitively.
// Blank phrases are ignored; an empty list disables extraction entirely.
func WithComplexityKeywords(phrases ...string) Option {
	return func(o *options) {
		o.phrases = append([]string{}, phrases...)
	}
}

// WithReserved names that synthesized CTEs must not reuse, typically the
// names defined by the statement's own WITH clause.
func WithReserved(names ...string) Option {
	return func(o *options) { o.reserved = append(o.reserved, names...) }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.phrases == nil {
		o.phrases = DefaultComplexityKeywords
	}
	o.complexity = compilePhrases(o.dialect, o.phrases)
	return o
}

func compilePhrases(d *dialect.Dialect, phrases []string) [][]token.Token {
	out := make([][]token.Token, 0, len(phrases))
	for _, p := range phrases {
		seq := lexer.Significant(lexer.Tokenize(strings.TrimSpace(p), d))
		if len(seq) > 0 {
			out = append(out, seq)
		}
	}
	return out
}

// normalizeName folds an identifier for comparison: quotes removed, lower case.
func normalizeName(name string) string {
	if n := len(name); n >= 2 {
		switch {
		case name[0] == '"' && name[n-1] == '"',
			name[0] == '`' && name[n-1] == '`',
			name[0] == '[' && name[n-1] == ']':
			name = name[1 : n-1]
		}
	}
	return strings.ToLower(name)
}
