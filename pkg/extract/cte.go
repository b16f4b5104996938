package extract

import (
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/lexer"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// CTE splits a statement's leading WITH clause from the query that uses it.
//
// The clause runs from a leading WITH up to the first top-level SELECT,
// INSERT, UPDATE or DELETE. Text before the WITH
// stays with the remainder, so "INSERT INTO t WITH c AS (...) SELECT ..."
// keeps its INSERT. Without a clause, or without a query after it, the
// result is ("", text).
func CTE(text string, opts ...Option) (cte, remainder string) {
	o := newOptions(opts)
	toks := lexer.Tokenize(text, o.dialect)

	with := findWith(toks)
	if with < 0 {
		return "", text
	}
	main := findMainQuery(toks, with+1)
	if main < 0 {
		return "", text
	}

	start, end := toks[with].Pos.Offset, toks[main].Pos.Offset
	cte = strings.TrimSpace(text[start:end])
	remainder = strings.TrimSpace(text[:start] + text[end:])
	return cte, remainder
}

// findWith returns the index in toks of a WITH that opens the statement,
// either first or after an "INSERT INTO name [(cols)]" prefix, and has the
// shape WITH [RECURSIVE] name [(cols)] AS (. Other WITHs (table hints,
// "with time zone", "WITH ROLLUP") are not CTEs and yield -1.
func findWith(toks []token.Token) int {
	var sig []int
	for i, t := range toks {
		if !token.IsTrivia(t.Type) && t.Type != token.EOF {
			sig = append(sig, i)
		}
	}
	at := func(j int) token.TokenType {
		if j < len(sig) {
			return toks[sig[j]].Type
		}
		return token.EOF
	}

	j := 0
	if at(j) == token.INSERT {
		if at(j+1) != token.INTO {
			return -1
		}
		j = skipName(at, j+2)
		if j < 0 {
			return -1
		}
		if at(j) == token.LPAREN {
			j = skipGroup(at, j)
		}
	}
	if at(j) != token.WITH {
		return -1
	}
	with := j

	j++
	if at(j) == token.RECURSIVE {
		j++
	}
	if j = skipName(at, j); j < 0 {
		return -1
	}
	if at(j) == token.LPAREN {
		j = skipGroup(at, j)
	}
	if at(j) != token.AS || at(j+1) != token.LPAREN {
		return -1
	}
	return sig[with]
}

// skipName skips a possibly qualified name starting at j and returns the
// index after it, or -1 when j does not start a name.
func skipName(at func(int) token.TokenType, j int) int {
	if !token.IsWord(at(j)) {
		return -1
	}
	j++
	for at(j) == token.DOT && token.IsWord(at(j+1)) {
		j += 2
	}
	return j
}

// skipGroup skips the parenthesized group opening at j.
func skipGroup(at func(int) token.TokenType, j int) int {
	depth := 0
	for ; at(j) != token.EOF; j++ {
		switch at(j) {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return j
}

func findMainQuery(toks []token.Token, from int) int {
	depth := 0
	for i := from; i < len(toks); i++ {
		switch t := toks[i].Type; {
		case t == token.LPAREN:
			depth++
		case t == token.RPAREN:
			if depth > 0 {
				depth--
			}
		case depth == 0 && token.IsDML(t):
			return i
		}
	}
	return -1
}

// CTENames lists the names a WITH clause defines, in order.
func CTENames(cte string, opts ...Option) []string {
	o := newOptions(opts)
	toks := lexer.Significant(lexer.Tokenize(cte, o.dialect))

	i := 0
	for i < len(toks) && toks[i].Type != token.WITH {
		i++
	}
	if i == len(toks) {
		return nil
	}
	i++
	if i < len(toks) && toks[i].Type == token.RECURSIVE {
		i++
	}

	var names []string
	expectName := true
	depth := 0
	for ; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Type == token.LPAREN:
			depth++
		case t.Type == token.RPAREN:
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case t.Type == token.COMMA:
			expectName = true
			continue
		case expectName:
			names = append(names, t.Literal)
		}
		expectName = false
	}
	return names
}
