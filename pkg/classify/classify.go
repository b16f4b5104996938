package classify

import (
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/segment"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// Rule maps statements matching a predicate to a category.
// Match receives the statement's significant tokens (no comments).
type Rule struct {
	Name     string
	Category Category
	Match    func(sig []token.Token) bool
}

// Classifier evaluates rules top to bottom; the first match wins.
// Statements no rule matches are Main.
type Classifier struct {
	rules []Rule
}

// New returns a classifier with the given rules, in priority order.
func New(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Default returns a classifier with DefaultRules.
func Default() *Classifier {
	return New(DefaultRules()...)
}

// DefaultRules returns the built-in rule list. Temp tables come first
// because CREATE TEMP TABLE and CTAS would otherwise read as DDL.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "temp-table", Category: TempTable, Match: IsTempTable},
		{Name: "ddl", Category: DDL, Match: IsDDL},
	}
}

// Classify returns the category of stmt and the name of the matching rule
// ("" when the statement falls through to Main).
func (c *Classifier) Classify(stmt segment.Statement) (Category, string) {
	return c.classifyTokens(stmt.Significant())
}

func (c *Classifier) classifyTokens(sig []token.Token) (Category, string) {
	for _, r := range c.rules {
		if r.Match(sig) {
			return r.Category, r.Name
		}
	}
	return Main, ""
}

// ddlPrefixes are the statement openings treated as schema definition.
var ddlPrefixes = [][]token.TokenType{
	{token.CREATE, token.TABLE},
	{token.CREATE, token.VIEW},
	{token.CREATE, token.INDEX},
	{token.CREATE, token.UNIQUE, token.INDEX},
	{token.ALTER, token.TABLE},
	{token.DROP, token.TABLE},
	{token.DROP, token.VIEW},
	{token.DROP, token.INDEX},
}

// IsDDL reports whether the statement opens with a schema-definition keyword
// sequence.
func IsDDL(sig []token.Token) bool {
	for _, p := range ddlPrefixes {
		if hasPrefix(sig, p...) {
			return true
		}
	}
	return false
}

// IsTempTable reports whether the statement creates a temporary table:
//
//	CREATE [GLOBAL|LOCAL] TEMP[ORARY] TABLE ...
//	CREATE TABLE #name ...
//	CREATE TABLE name AS SELECT ...
func IsTempTable(sig []token.Token) bool {
	if !hasPrefix(sig, token.CREATE) {
		return false
	}

	i := 1
	if i < len(sig) && (sig[i].Type == token.GLOBAL || sig[i].Type == token.LOCAL) {
		i++
	}
	if i+1 < len(sig) && (sig[i].Type == token.TEMP || sig[i].Type == token.TEMPORARY) && sig[i+1].Type == token.TABLE {
		return true
	}

	if !hasPrefix(sig, token.CREATE, token.TABLE) || len(sig) < 3 {
		return false
	}
	if sig[2].Type == token.IDENT && strings.HasPrefix(sig[2].Literal, "#") {
		return true
	}

	// CTAS: a possibly qualified name followed by AS SELECT.
	j := skipQualifiedName(sig, 2)
	return j > 2 && j+1 < len(sig) && sig[j].Type == token.AS && sig[j+1].Type == token.SELECT
}

// skipQualifiedName returns the index after name(.name)* starting at i, or i
// when no name starts there.
func skipQualifiedName(sig []token.Token, i int) int {
	isName := func(k int) bool {
		return k < len(sig) && token.IsWord(sig[k].Type)
	}
	if !isName(i) {
		return i
	}
	i++
	for i+1 < len(sig) && sig[i].Type == token.DOT && isName(i+1) {
		i += 2
	}
	return i
}

func hasPrefix(sig []token.Token, seq ...token.TokenType) bool {
	if len(sig) < len(seq) {
		return false
	}
	for i, t := range seq {
		if sig[i].Type != t {
			return false
		}
	}
	return true
}
