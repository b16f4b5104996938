// Package token defines the token types produced by the SQL lexer.
//
// Core tokens are defined as constants (IDs 0-999) for switch performance.
// Dialect-specific keywords are registered dynamically via Register().
//
// Unlike a parser-oriented token set, trivia (whitespace and comments) are
// first-class tokens here: concatenating the Literal of every token of a
// script reproduces the script byte for byte.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Trivia
	WHITESPACE
	COMMENT

	// Literals
	IDENT        // identifier, including #temp and @var names
	QUOTED_IDENT // "name", `name`, [name]
	NUMBER       // 123, 45.67, 1e10
	STRING       // 'hello', $$body$$

	// Punctuation and operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	OPERATOR  // any other operator run (||, ::, ->, ...)

	// Keywords (alphabetical)
	ALL
	ALTER
	AND
	AS
	BY
	CREATE
	CROSS
	DELETE
	DISTINCT
	DROP
	EXCEPT
	FETCH
	FROM
	FULL
	GLOBAL
	GROUP
	HAVING
	INDEX
	INNER
	INSERT
	INTERSECT
	INTO
	JOIN
	LEFT
	LIMIT
	LOCAL
	MERGE
	NATURAL
	OFFSET
	ON
	ORDER
	OUTER
	QUALIFY
	RECURSIVE
	RIGHT
	SELECT
	SET
	TABLE
	TEMP
	TEMPORARY
	TRUNCATE
	UNION
	UNIQUE
	UPDATE
	USING
	VALUES
	VIEW
	WHERE
	WINDOW
	WITH

	// Sentinel - dynamic tokens start after this
	maxBuiltin TokenType = 999
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := getDynamicName(t); ok {
		return name
	}
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	WHITESPACE: "WHITESPACE",
	COMMENT:    "COMMENT",

	IDENT:        "IDENT",
	QUOTED_IDENT: "QUOTED_IDENT",
	NUMBER:       "NUMBER",
	STRING:       "STRING",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
	OPERATOR:  "OPERATOR",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":       ALL,
	"alter":     ALTER,
	"and":       AND,
	"as":        AS,
	"by":        BY,
	"create":    CREATE,
	"cross":     CROSS,
	"delete":    DELETE,
	"distinct":  DISTINCT,
	"drop":      DROP,
	"except":    EXCEPT,
	"fetch":     FETCH,
	"from":      FROM,
	"full":      FULL,
	"global":    GLOBAL,
	"group":     GROUP,
	"having":    HAVING,
	"index":     INDEX,
	"inner":     INNER,
	"insert":    INSERT,
	"intersect": INTERSECT,
	"into":      INTO,
	"join":      JOIN,
	"left":      LEFT,
	"limit":     LIMIT,
	"local":     LOCAL,
	"merge":     MERGE,
	"natural":   NATURAL,
	"offset":    OFFSET,
	"on":        ON,
	"order":     ORDER,
	"outer":     OUTER,
	"qualify":   QUALIFY,
	"recursive": RECURSIVE,
	"right":     RIGHT,
	"select":    SELECT,
	"set":       SET,
	"table":     TABLE,
	"temp":      TEMP,
	"temporary": TEMPORARY,
	"truncate":  TRUNCATE,
	"union":     UNION,
	"unique":    UNIQUE,
	"update":    UPDATE,
	"using":     USING,
	"values":    VALUES,
	"view":      VIEW,
	"where":     WHERE,
	"window":    WINDOW,
	"with":      WITH,
}

func init() {
	for name, t := range keywords {
		tokenNames[t] = upper(name)
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
// This only checks builtin keywords; dialect keywords go through dialect.Dialect.LookupKeyword.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return (t >= ALL && t <= WITH) || IsDynamic(t)
}

// IsWord reports whether t can stand in name position: an identifier, a
// quoted identifier, or a keyword used as a name (temp, window, values).
func IsWord(t TokenType) bool {
	return t == IDENT || t == QUOTED_IDENT || IsKeyword(t)
}

// IsTrivia returns true for tokens that carry no syntax (whitespace, comments).
func IsTrivia(t TokenType) bool {
	return t == WHITESPACE || t == COMMENT
}

// IsDML returns true for the keywords that start a data-manipulation query.
func IsDML(t TokenType) bool {
	switch t {
	case SELECT, INSERT, UPDATE, DELETE:
		return true
	}
	return false
}

// Token represents a lexical token with position information.
// Literal is the exact source text of the token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Literal)
}
