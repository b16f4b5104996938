// Package lexer tokenizes SQL scripts without losing any source text.
//
// Every byte of the input belongs to exactly one token, whitespace and
// comments included, so callers can cut a script at token boundaries and
// re-emit the pieces verbatim. Malformed input (unterminated strings or
// comments) never fails: the offending construct extends to end of input.
package lexer

import (
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input     string
	pos       int // offset of the current byte
	line      int // current line number (1-based)
	lineStart int // offset of the first byte of the current line

	dialect *dialect.Dialect
}

// New creates a Lexer for input. A nil dialect selects dialect.Default().
func New(input string, d *dialect.Dialect) *Lexer {
	if d == nil {
		d = dialect.Default()
	}
	return &Lexer{
		input:   input,
		line:    1,
		dialect: d,
	}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

// cur returns the current byte, or 0 at end of input.
func (l *Lexer) cur() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// peek returns the byte after the current one without advancing.
func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

// advance moves past the current byte, tracking line starts.
func (l *Lexer) advance() {
	if l.eof() {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.lineStart = l.pos + 1
	}
	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.pos - l.lineStart + 1,
		Offset: l.pos,
	}
}

// NextToken returns the next token. At end of input it returns EOF forever.
func (l *Lexer) NextToken() token.Token {
	pos := l.currentPos()
	start := l.pos

	if l.eof() {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	typ := l.scan()
	return token.Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
}

// scan consumes one token and reports its type.
func (l *Lexer) scan() token.TokenType {
	ch := l.cur()

	switch {
	case isSpace(ch):
		for !l.eof() && isSpace(l.cur()) {
			l.advance()
		}
		return token.WHITESPACE
	case ch == '-' && l.peek() == '-':
		l.skipLine()
		return token.COMMENT
	case ch == '#' && l.dialect.HashComments():
		l.skipLine()
		return token.COMMENT
	case ch == '/' && l.peek() == '*':
		l.skipBlockComment()
		return token.COMMENT
	case ch == '\'':
		l.skipQuoted('\'', l.dialect.BackslashEscapes())
		return token.STRING
	case ch == '"':
		l.skipQuoted('"', false)
		return token.QUOTED_IDENT
	case ch == '`' && l.dialect.BacktickIdentifiers():
		l.skipQuoted('`', false)
		return token.QUOTED_IDENT
	case ch == '[' && l.dialect.BracketIdentifiers():
		l.skipUntil(']')
		return token.QUOTED_IDENT
	case ch == '$' && l.dialect.DollarQuotes():
		if tag, ok := l.dollarTag(); ok {
			l.skipDollarQuoted(tag)
			return token.STRING
		}
		l.advance()
		for isIdentPart(l.cur()) {
			l.advance()
		}
		return token.IDENT // $1 style parameter
	case isIdentStart(ch), ch == '#', ch == '@':
		return l.scanIdentifier()
	case isDigit(ch), ch == '.' && isDigit(l.peek()):
		l.skipNumber()
		return token.NUMBER
	}

	return l.scanOperator()
}

func (l *Lexer) scanIdentifier() token.TokenType {
	start := l.pos
	prefixed := l.cur() == '#' || l.cur() == '@'
	for l.cur() == '#' || l.cur() == '@' {
		l.advance()
	}
	for isIdentPart(l.cur()) {
		l.advance()
	}
	if prefixed {
		return token.IDENT
	}

	lower := strings.ToLower(l.input[start:l.pos])
	if t := token.LookupIdent(lower); t != token.IDENT {
		return t
	}
	if t, ok := l.dialect.LookupKeyword(lower); ok {
		return t
	}
	return token.IDENT
}

func (l *Lexer) scanOperator() token.TokenType {
	ch := l.cur()
	l.advance()

	switch ch {
	case '(':
		return token.LPAREN
	case ')':
		return token.RPAREN
	case ',':
		return token.COMMA
	case ';':
		return token.SEMICOLON
	case '.':
		return token.DOT
	case '+':
		return token.PLUS
	case '-':
		if l.cur() == '>' {
			l.skipOperatorRun()
			return token.OPERATOR
		}
		return token.MINUS
	case '*':
		return token.STAR
	case '/':
		return token.SLASH
	case '%':
		return token.PERCENT
	case '=':
		return token.EQ
	case '<':
		switch l.cur() {
		case '=':
			l.advance()
			return token.LE
		case '>':
			l.advance()
			return token.NE
		}
		return token.LT
	case '>':
		if l.cur() == '=' {
			l.advance()
			return token.GE
		}
		return token.GT
	case '!':
		if l.cur() == '=' {
			l.advance()
			return token.NE
		}
		l.skipOperatorRun()
		return token.OPERATOR
	}

	if isOperatorChar(ch) {
		l.skipOperatorRun()
		return token.OPERATOR
	}
	return token.ILLEGAL
}

func (l *Lexer) skipOperatorRun() {
	for isOperatorChar(l.cur()) {
		l.advance()
	}
}

// skipLine consumes up to, not including, the next newline.
func (l *Lexer) skipLine() {
	for !l.eof() && l.cur() != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() {
	l.advanceN(2) // skip "/*"
	for !l.eof() {
		if l.cur() == '*' && l.peek() == '/' {
			l.advanceN(2)
			return
		}
		l.advance()
	}
}

// skipQuoted consumes a quoted run. A doubled quote is an escape.
func (l *Lexer) skipQuoted(quote byte, backslash bool) {
	l.advance() // skip opening quote
	for !l.eof() {
		switch {
		case backslash && l.cur() == '\\':
			l.advanceN(2)
		case l.cur() == quote && l.peek() == quote:
			l.advanceN(2)
		case l.cur() == quote:
			l.advance()
			return
		default:
			l.advance()
		}
	}
}

func (l *Lexer) skipUntil(closing byte) {
	l.advance()
	for !l.eof() {
		if l.cur() == closing {
			l.advance()
			return
		}
		l.advance()
	}
}

// dollarTag reports whether a dollar-quote opener ($$ or $tag$) starts here.
func (l *Lexer) dollarTag() (string, bool) {
	i := l.pos + 1
	for i < len(l.input) && (isIdentStart(l.input[i]) || (i > l.pos+1 && isDigit(l.input[i]))) {
		i++
	}
	if i < len(l.input) && l.input[i] == '$' {
		return l.input[l.pos : i+1], true
	}
	return "", false
}

func (l *Lexer) skipDollarQuoted(tag string) {
	l.advanceN(len(tag))
	end := strings.Index(l.input[l.pos:], tag)
	if end < 0 {
		l.advanceN(len(l.input) - l.pos)
		return
	}
	l.advanceN(end + len(tag))
}

func (l *Lexer) skipNumber() {
	for isDigit(l.cur()) {
		l.advance()
	}
	if l.cur() == '.' {
		l.advance()
		for isDigit(l.cur()) {
			l.advance()
		}
	}
	if (l.cur() == 'e' || l.cur() == 'E') && (isDigit(l.peek()) || l.peek() == '+' || l.peek() == '-') {
		l.advanceN(2)
		for isDigit(l.cur()) {
			l.advance()
		}
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

// isIdentStart treats every non-ASCII byte as a letter so identifiers in any
// script (for example Japanese column names) stay whole.
func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$' || ch == '#' || ch == '@'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isOperatorChar excludes '-' so a run never swallows a following "--" comment.
func isOperatorChar(ch byte) bool {
	return ch != 0 && strings.IndexByte("|&^~:?!<>=", ch) >= 0
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string, d *dialect.Dialect) []token.Token {
	l := New(input, d)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
