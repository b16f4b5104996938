// Package audit finds DELETE and TRUNCATE statements in SQL scripts.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqlsplit/internal/sqlfile"
	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
	"github.com/leapstack-labs/sqlsplit/pkg/lexer"
	"github.com/leapstack-labs/sqlsplit/pkg/segment"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// Operations reported by the audit.
const (
	OpDelete   = "delete"
	OpTruncate = "truncate"
)

// Placeholders for values the audit cannot determine.
const (
	UnknownTable = "UNKNOWN"
	NoCondition  = "-"
)

// Header is the CSV header row.
var Header = []string{"ファイル", "delete/truncate", "テーブル", "条件"}

// Finding is one destructive statement.
type Finding struct {
	File      string `json:"file"`
	Operation string `json:"operation"`
	Table     string `json:"table"`
	Condition string `json:"condition"`
	Line      int    `json:"line"`
}

// Analyze returns the DELETE and TRUNCATE statements of script in source
// order. file is recorded as the base name of the script path.
func Analyze(script, file string, d *dialect.Dialect) []Finding {
	var out []Finding
	for _, stmt := range segment.Split(script, segment.WithDialect(d)) {
		sig := lexer.Significant(lexer.Tokenize(stmt.Formatted, d))
		if len(sig) == 0 {
			continue
		}

		f := Finding{File: filepath.Base(file), Line: firstLine(stmt), Condition: NoCondition}
		switch sig[0].Type {
		case token.DELETE:
			f.Operation = OpDelete
			f.Table = deleteTarget(sig)
			f.Condition = whereClause(sig)
		case token.TRUNCATE:
			f.Operation = OpTruncate
			f.Table = truncateTarget(sig)
		default:
			continue
		}
		out = append(out, f)
	}
	return out
}

// firstLine returns the script line of the statement's first keyword,
// skipping any leading comments.
func firstLine(stmt segment.Statement) int {
	if i := lexer.NextSignificant(stmt.Tokens, 0); i >= 0 {
		return stmt.Pos.Line + stmt.Tokens[i].Pos.Line - 1
	}
	return stmt.Pos.Line
}

// truncateTarget handles TRUNCATE TABLE [schema.]name.
func truncateTarget(sig []token.Token) string {
	if len(sig) > 1 && sig[1].Type == token.TABLE {
		if name, _, ok := qualifiedName(sig, 2); ok {
			return name
		}
	}
	return UnknownTable
}

// deleteTarget handles DELETE FROM [schema.]name and the
// DELETE alias FROM [schema.]name alias form.
func deleteTarget(sig []token.Token) string {
	if len(sig) > 1 && sig[1].Type == token.FROM {
		if name, _, ok := qualifiedName(sig, 2); ok {
			return name
		}
		return UnknownTable
	}
	if len(sig) > 2 && isNamePart(sig[1]) && sig[2].Type == token.FROM {
		if name, _, ok := qualifiedName(sig, 3); ok {
			return name
		}
	}
	return UnknownTable
}

// qualifiedName reads name(.name)* starting at i.
func qualifiedName(sig []token.Token, i int) (string, int, bool) {
	if i >= len(sig) || !isNamePart(sig[i]) {
		return "", i, false
	}
	parts := []string{sig[i].Literal}
	i++
	for i+1 < len(sig) && sig[i].Type == token.DOT && isNamePart(sig[i+1]) {
		parts = append(parts, sig[i+1].Literal)
		i += 2
	}
	return strings.Join(parts, "."), i, true
}

func isNamePart(t token.Token) bool {
	return token.IsWord(t.Type)
}

// whereClause returns the top-level WHERE condition with whitespace
// collapsed, without the terminator.
func whereClause(sig []token.Token) string {
	depth := 0
	for i, t := range sig {
		switch t.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth > 0 {
				depth--
			}
		case token.WHERE:
			if depth > 0 || i+1 >= len(sig) {
				continue
			}
			rest := sig[i+1:]
			if rest[len(rest)-1].Type == token.SEMICOLON {
				rest = rest[:len(rest)-1]
			}
			if len(rest) == 0 {
				return NoCondition
			}
			return condition(rest)
		}
	}
	return NoCondition
}

// condition renders tokens as single-spaced text, keeping punctuation tight
// where the source had no space.
func condition(toks []token.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && toks[i-1].End() != t.Pos.Offset {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.Join(strings.Fields(t.Literal), " "))
	}
	return sb.String()
}

// OutputPath returns <dir>/<base>_delete.csv for the script at input.
func OutputPath(dir, input string) string {
	return filepath.Join(dir, sqlfile.BaseName(input)+"_delete.csv")
}

// WriteCSV writes findings with Header as the first row.
func WriteCSV(w io.Writer, findings []Finding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, f := range findings {
		if err := cw.Write([]string{f.File, f.Operation, f.Table, f.Condition}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
