package lexer

import (
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// Significant returns the tokens that carry syntax: no whitespace, no
// comments, no EOF.
func Significant(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if token.IsTrivia(t.Type) || t.Type == token.EOF {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Join concatenates token literals, reproducing the source they came from.
func Join(tokens []token.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Literal)
	}
	return sb.String()
}

// StripComments renders tokens without their comments. A comment wedged
// between two non-space tokens becomes a single space so they stay apart.
func StripComments(tokens []token.Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if t.Type != token.COMMENT {
			sb.WriteString(t.Literal)
			continue
		}
		if sb.Len() == 0 || i+1 >= len(tokens) {
			continue
		}
		prev := sb.String()[sb.Len()-1]
		next := tokens[i+1]
		if !isSpace(prev) && next.Type != token.WHITESPACE && next.Type != token.EOF {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// NextSignificant returns the index of the first non-trivia token at or
// after i, or -1.
func NextSignificant(tokens []token.Token, i int) int {
	for ; i < len(tokens); i++ {
		if !token.IsTrivia(tokens[i].Type) && tokens[i].Type != token.EOF {
			return i
		}
	}
	return -1
}

// HasSequence reports whether tokens contain seq as consecutive significant
// tokens (GROUP BY matches "group  /* x */ by"). Keywords compare by type;
// other tokens compare by case-insensitive literal.
func HasSequence(tokens []token.Token, seq []token.Token) bool {
	if len(seq) == 0 {
		return false
	}
	sig := Significant(tokens)
	for i := 0; i+len(seq) <= len(sig); i++ {
		match := true
		for j, want := range seq {
			if !sameToken(sig[i+j], want) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func sameToken(got, want token.Token) bool {
	if got.Type != want.Type {
		return false
	}
	if token.IsKeyword(want.Type) {
		return true
	}
	return strings.EqualFold(got.Literal, want.Literal)
}
