package extract

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/lexer"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// CTEBlock is a named query lifted into a WITH clause.
type CTEBlock struct {
	Alias string // name of the CTE
	Body  string // query between the parentheses, trimmed
	Text  string // WITH <alias> AS (\n<body>\n)
}

// SubqueryBlock is a derived table rewritten as a CTE.
type SubqueryBlock struct {
	CTEBlock
	Keyword   string // FROM or JOIN as spelled in the source
	Reference string // what replaced the derived table after Keyword
}

// scanState is the state of the derived-table scanner.
type scanState int

const (
	stateScanning scanState = iota
	stateInBlock
	stateClosing
)

// clauseKeywords can follow a derived table but never name it.
var clauseKeywords = map[token.TokenType]bool{
	token.AS: true, token.ON: true, token.USING: true, token.WHERE: true,
	token.GROUP: true, token.ORDER: true, token.HAVING: true, token.WINDOW: true,
	token.QUALIFY: true, token.LIMIT: true, token.OFFSET: true, token.FETCH: true,
	token.JOIN: true, token.INNER: true, token.LEFT: true, token.RIGHT: true,
	token.FULL: true, token.OUTER: true, token.CROSS: true, token.NATURAL: true,
	token.UNION: true, token.INTERSECT: true, token.EXCEPT: true,
	token.SELECT: true, token.FROM: true, token.WITH: true, token.INSERT: true,
	token.UPDATE: true, token.DELETE: true, token.SET: true, token.VALUES: true,
	token.INTO: true, token.AND: true, token.ALL: true, token.DISTINCT: true,
}

// candidate tracks one "FROM (" or "JOIN (" under inspection.
type candidate struct {
	keyword int // index of FROM/JOIN
	open    int // index of "("
	close   int // index of the matching ")"
}

// Subqueries rewrites complex derived tables as CTEs.
//
// A derived table qualifies when it directly follows FROM or JOIN, starts
// with SELECT, carries an alias and contains at least one complexity phrase.
// Each qualifying table becomes a SubqueryBlock and is replaced in the
// returned text by "<keyword> <alias>". Only outermost derived tables are
// considered. When nothing qualifies the text comes back unchanged.
func Subqueries(text string, opts ...Option) ([]SubqueryBlock, string) {
	o := newOptions(opts)
	toks := lexer.Tokenize(text, o.dialect)

	taken := make(map[string]bool, len(o.reserved))
	for _, name := range o.reserved {
		taken[normalizeName(name)] = true
	}

	var (
		blocks []SubqueryBlock
		out    strings.Builder
		copied int // text[:copied] has been written to out
		state  = stateScanning
		cand   candidate
		depth  int
	)

	for i := 0; i < len(toks); i++ {
		t := toks[i]

		switch state {
		case stateScanning:
			if t.Type != token.FROM && t.Type != token.JOIN {
				continue
			}
			j := i + 1
			if j < len(toks) && toks[j].Type == token.WHITESPACE {
				j++
			}
			if j < len(toks) && toks[j].Type == token.LPAREN {
				cand = candidate{keyword: i, open: j}
				depth = 1
				state = stateInBlock
				i = j
			}

		case stateInBlock:
			switch t.Type {
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			}
			if depth > 0 {
				continue
			}
			cand.close = i
			state = stateClosing
			fallthrough

		case stateClosing:
			state = stateScanning
			block, aliasEnd, ok := closeCandidate(text, toks, cand, o, taken)
			if !ok {
				continue
			}
			kw := toks[cand.keyword]
			out.WriteString(text[copied:kw.Pos.Offset])
			out.WriteString(kw.Literal + " " + block.Reference)
			copied = toks[aliasEnd].End()
			blocks = append(blocks, block)
			i = aliasEnd
		}
	}

	if len(blocks) == 0 {
		return nil, text
	}
	out.WriteString(text[copied:])
	return blocks, out.String()
}

// closeCandidate decides whether a balanced derived table is extracted.
// It returns the block and the index of the alias token.
func closeCandidate(text string, toks []token.Token, c candidate, o *options, taken map[string]bool) (SubqueryBlock, int, bool) {
	// The body must open with SELECT, comments included in the check so
	// nothing ahead of SELECT is lost.
	first := c.open + 1
	for first < c.close && toks[first].Type == token.WHITESPACE {
		first++
	}
	if first == c.close || toks[first].Type != token.SELECT {
		return SubqueryBlock{}, 0, false
	}

	body := toks[c.open+1 : c.close]
	if !isComplex(body, o.complexity) {
		return SubqueryBlock{}, 0, false
	}

	alias, ok := findAlias(toks, c.close)
	if !ok {
		return SubqueryBlock{}, 0, false
	}

	bodyText := strings.TrimSpace(text[toks[c.open].End():toks[c.close].Pos.Offset])
	aliasLit := toks[alias].Literal
	name := uniqueName(aliasLit, taken)

	ref := name
	if name != aliasLit {
		ref = name + " " + aliasLit
	}

	return SubqueryBlock{
		CTEBlock: CTEBlock{
			Alias: name,
			Body:  bodyText,
			Text:  fmt.Sprintf("WITH %s AS (\n%s\n)", name, bodyText),
		},
		Keyword:   toks[c.keyword].Literal,
		Reference: ref,
	}, alias, true
}

func isComplex(body []token.Token, phrases [][]token.Token) bool {
	for _, seq := range phrases {
		if lexer.HasSequence(body, seq) {
			return true
		}
	}
	return false
}

// findAlias locates the alias after the closing paren: an optional AS, then
// a name, all on the paren's line. A column list after the alias is a miss.
func findAlias(toks []token.Token, closeIdx int) (int, bool) {
	i := skipInlineSpace(toks, closeIdx+1)
	if i < len(toks) && toks[i].Type == token.AS {
		i = skipInlineSpace(toks, i+1)
	}
	if i >= len(toks) || !isAliasToken(toks[i].Type) {
		return 0, false
	}
	if i+1 < len(toks) && toks[i+1].Type == token.LPAREN {
		return 0, false
	}
	return i, true
}

func skipInlineSpace(toks []token.Token, i int) int {
	if i < len(toks) && toks[i].Type == token.WHITESPACE && !strings.ContainsRune(toks[i].Literal, '\n') {
		return i + 1
	}
	return i
}

func isAliasToken(t token.TokenType) bool {
	switch {
	case t == token.IDENT, t == token.QUOTED_IDENT:
		return true
	case token.IsDynamic(t):
		return false
	case token.IsKeyword(t):
		return !clauseKeywords[t]
	}
	return false
}

// uniqueName returns alias, or alias_<n> with the smallest free n >= 2, and
// marks the result as taken.
func uniqueName(alias string, taken map[string]bool) string {
	name := alias
	for n := 2; taken[normalizeName(name)]; n++ {
		name = suffixed(alias, n)
	}
	taken[normalizeName(name)] = true
	return name
}

// suffixed appends _<n> inside any identifier quotes.
func suffixed(alias string, n int) string {
	if l := len(alias); l >= 2 {
		switch alias[l-1] {
		case '"', '`', ']':
			return fmt.Sprintf("%s_%d%c", alias[:l-1], n, alias[l-1])
		}
	}
	return fmt.Sprintf("%s_%d", alias, n)
}
