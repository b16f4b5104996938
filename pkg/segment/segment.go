// Package segment splits SQL scripts into top-level statements.
package segment

import (
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
	"github.com/leapstack-labs/sqlsplit/pkg/lexer"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// Statement is one top-level statement of a script.
type Statement struct {
	Index     int            // position among the kept statements, source order
	Text      string         // trimmed source text, comments and terminator included
	Formatted string         // Text without comments, trimmed
	Pos       token.Position // position of the first byte of Text in the script
	Tokens    []token.Token  // tokens of Text, ending with EOF
}

// Significant returns the statement's tokens without trivia.
func (s Statement) Significant() []token.Token {
	return lexer.Significant(s.Tokens)
}

type options struct {
	dialect *dialect.Dialect
	dropped func(text string, pos token.Position)
}

// Option configures Split.
type Option func(*options)

// WithDialect selects the dialect used to tokenize the script.
func WithDialect(d *dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// OnDropped registers a callback for fragments that hold only comments.
func OnDropped(fn func(text string, pos token.Position)) Option {
	return func(o *options) { o.dropped = fn }
}

// Split cuts script into statements at top-level semicolons.
//
// The terminator belongs to the statement it ends, and so does a comment
// trailing the terminator on the same line. Whitespace-only fragments are
// dropped silently; comment-only fragments are dropped and reported through
// OnDropped.
func Split(script string, opts ...Option) []Statement {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	toks := lexer.Tokenize(script, o.dialect)
	var (
		out   []Statement
		start int
	)

	emit := func(end int) {
		if end <= start {
			return
		}
		if st, ok := build(toks[start:end], len(out), o); ok {
			out = append(out, st)
		}
		start = end
	}

	for i := 0; i < len(toks); i++ {
		if toks[i].Type != token.SEMICOLON {
			continue
		}
		end := i + 1
		end = absorbTrailingComment(toks, end)
		emit(end)
		i = end - 1
	}
	emit(len(toks) - 1) // drop EOF

	return out
}

// absorbTrailingComment extends end over "<spaces> -- comment" on the same line.
func absorbTrailingComment(toks []token.Token, end int) int {
	j := end
	if j < len(toks) && toks[j].Type == token.WHITESPACE {
		if strings.ContainsRune(toks[j].Literal, '\n') {
			return end
		}
		j++
	}
	if j < len(toks) && toks[j].Type == token.COMMENT && token.CommentKindOf(toks[j].Literal) == token.LineComment {
		return j + 1
	}
	return end
}

func build(toks []token.Token, index int, o *options) (Statement, bool) {
	// Trim leading and trailing whitespace tokens.
	lo, hi := 0, len(toks)
	for lo < hi && toks[lo].Type == token.WHITESPACE {
		lo++
	}
	for hi > lo && toks[hi-1].Type == token.WHITESPACE {
		hi--
	}
	if lo == hi {
		return Statement{}, false
	}
	toks = toks[lo:hi]

	text := lexer.Join(toks)
	formatted := strings.TrimSpace(lexer.StripComments(toks))
	if formatted == "" || formatted == ";" {
		if o.dropped != nil && strings.TrimSuffix(text, ";") != strings.TrimSuffix(formatted, ";") {
			o.dropped(text, toks[0].Pos)
		}
		return Statement{}, false
	}

	// Re-tokenize relative to the statement so token offsets index Text.
	return Statement{
		Index:     index,
		Text:      text,
		Formatted: formatted,
		Pos:       toks[0].Pos,
		Tokens:    lexer.Tokenize(text, o.dialect),
	}, true
}
