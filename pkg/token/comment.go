package token

import "strings"

// CommentKind distinguishes line vs block comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // -- comment, # comment
	BlockComment                    // /* comment */
)

// CommentKindOf reports the kind of a COMMENT token literal.
func CommentKindOf(literal string) CommentKind {
	if strings.HasPrefix(literal, "/*") {
		return BlockComment
	}
	return LineComment
}
