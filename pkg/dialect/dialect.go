// Package dialect provides the lexical configuration of SQL dialects.
//
// A dialect only toggles how text is cut into tokens: which quoting styles
// delimit identifiers and strings, which comment markers exist, and which
// extra words are reserved. It never changes statement semantics.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// Dialect describes the lexical features of one SQL dialect.
type Dialect struct {
	Name string

	backtickIdents bool
	bracketIdents  bool
	dollarQuotes   bool
	hashComments   bool
	backslashEsc   bool
	keywords       map[string]token.TokenType
}

// BacktickIdentifiers reports whether `name` is a quoted identifier.
func (d *Dialect) BacktickIdentifiers() bool { return d.backtickIdents }

// BracketIdentifiers reports whether [name] is a quoted identifier.
func (d *Dialect) BracketIdentifiers() bool { return d.bracketIdents }

// DollarQuotes reports whether $$...$$ and $tag$...$tag$ delimit strings.
func (d *Dialect) DollarQuotes() bool { return d.dollarQuotes }

// HashComments reports whether # starts a line comment.
// When false, #name lexes as an identifier (T-SQL temp tables).
func (d *Dialect) HashComments() bool { return d.hashComments }

// BackslashEscapes reports whether \' escapes a quote inside a string literal.
func (d *Dialect) BackslashEscapes() bool { return d.backslashEsc }

// LookupKeyword returns the token registered for a dialect keyword.
func (d *Dialect) LookupKeyword(lower string) (token.TokenType, bool) {
	t, ok := d.keywords[lower]
	return t, ok
}

// Builder configures a Dialect.
type Builder struct {
	d *Dialect
}

// NewDialect starts a dialect definition.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:     name,
		keywords: make(map[string]token.TokenType),
	}}
}

// Backticks enables `quoted` identifiers.
func (b *Builder) Backticks() *Builder {
	b.d.backtickIdents = true
	return b
}

// Brackets enables [quoted] identifiers.
func (b *Builder) Brackets() *Builder {
	b.d.bracketIdents = true
	return b
}

// DollarQuoted enables dollar-quoted string bodies.
func (b *Builder) DollarQuoted() *Builder {
	b.d.dollarQuotes = true
	return b
}

// HashLineComments makes # start a line comment.
func (b *Builder) HashLineComments() *Builder {
	b.d.hashComments = true
	return b
}

// BackslashEscaped makes \ an escape character inside string literals.
func (b *Builder) BackslashEscaped() *Builder {
	b.d.backslashEsc = true
	return b
}

// Reserved registers extra reserved keywords for the dialect.
func (b *Builder) Reserved(words ...string) *Builder {
	for _, w := range words {
		b.d.keywords[strings.ToLower(w)] = token.Register(strings.ToUpper(w))
	}
	return b
}

// Build returns the configured dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}
