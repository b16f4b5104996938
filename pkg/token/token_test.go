package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"select", SELECT},
		{"with", WITH},
		{"temporary", TEMPORARY},
		{"join", JOIN},
		{"customers", IDENT},
		{"SELECT", IDENT}, // callers lowercase first
	}

	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.ident))
		})
	}
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "SELECT", SELECT.String())
	assert.Equal(t, "GROUP", GROUP.String())
	assert.Equal(t, ";", SEMICOLON.String())
	assert.Equal(t, "TOKEN(998)", TokenType(998).String())
}

func TestClassPredicates(t *testing.T) {
	assert.True(t, IsKeyword(WITH))
	assert.False(t, IsKeyword(IDENT))
	assert.True(t, IsTrivia(COMMENT))
	assert.True(t, IsTrivia(WHITESPACE))
	assert.False(t, IsTrivia(SEMICOLON))
	assert.True(t, IsWord(IDENT))
	assert.True(t, IsWord(QUOTED_IDENT))
	assert.True(t, IsWord(TEMP))
	assert.False(t, IsWord(DOT))
	assert.False(t, IsWord(STRING))

	for _, tt := range []TokenType{SELECT, INSERT, UPDATE, DELETE} {
		assert.True(t, IsDML(tt), tt.String())
	}
	assert.False(t, IsDML(WITH))
}

func TestTokenEnd(t *testing.T) {
	tok := Token{Type: IDENT, Literal: "orders", Pos: Position{Line: 1, Column: 5, Offset: 4}}
	assert.Equal(t, 10, tok.End())
}

func TestCommentKindOf(t *testing.T) {
	assert.Equal(t, BlockComment, CommentKindOf("/* x */"))
	assert.Equal(t, LineComment, CommentKindOf("-- x"))
	assert.Equal(t, LineComment, CommentKindOf("# x"))
}
