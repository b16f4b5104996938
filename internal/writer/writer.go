// Package writer persists split results as numbered SQL files.
package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/classify"
	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
	"github.com/leapstack-labs/sqlsplit/pkg/lexer"
	"github.com/leapstack-labs/sqlsplit/pkg/splitter"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// File is one output file.
type File struct {
	Name       string            `json:"name"`
	Category   classify.Category `json:"category"`
	Body       string            `json:"-"`
	References []string          `json:"references,omitempty"` // Main only
}

// Writer writes the files for one input script.
//
// The numbering counter lives on the Writer, so every input gets its own
// Writer and its own sequence starting at 01.
type Writer struct {
	dir  string
	base string

	counter             int
	referenceSubqueries bool
	dialect             *dialect.Dialect
	logger              *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithSubqueryReferences lists subquery CTE files in the main file's
// "References CTEs from" line alongside the extracted CTE files.
func WithSubqueryReferences(on bool) Option {
	return func(w *Writer) { w.referenceSubqueries = on }
}

// WithDialect sets the dialect used to detect existing terminators.
func WithDialect(d *dialect.Dialect) Option {
	return func(w *Writer) { w.dialect = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// New creates a Writer that writes <base>_NN.sql and <base>_main.sql into dir.
func New(dir, base string, opts ...Option) *Writer {
	w := &Writer{dir: dir, base: base}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Plan renders the files for res without touching the filesystem. Numbered
// files follow bucket order (DDL, temporary tables, CTEs, subqueries); the
// main file comes last. Plan advances the Writer's counter, so call either
// Plan or Write, once.
func (w *Writer) Plan(res *splitter.Result) []File {
	var (
		files []File
		refs  []string
	)

	for _, f := range res.Fragments() {
		if f.Category == classify.Main {
			continue
		}
		name := w.nextName()
		files = append(files, File{Name: name, Category: f.Category, Body: w.render(name, f)})
		if f.Category == classify.CTE || (f.Category == classify.Subquery && w.referenceSubqueries) {
			refs = append(refs, name)
		}
	}

	mainName := fmt.Sprintf("%s_main.sql", w.base)
	files = append(files, File{
		Name:       mainName,
		Category:   classify.Main,
		Body:       w.renderMain(mainName, res.Main, refs),
		References: refs,
	})
	return files
}

// Write plans res and writes the files. It returns the names written, in
// write order.
func (w *Writer) Write(res *splitter.Result) ([]string, error) {
	return w.WriteFiles(w.Plan(res))
}

// WriteFiles creates the output directory and writes files in order. On
// failure, files already written stay on disk.
func (w *Writer) WriteFiles(files []File) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(w.dir, f.Name)
		if err := os.WriteFile(path, []byte(f.Body), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		w.logger.Debug("wrote file", "path", path, "category", f.Category)
		written = append(written, f.Name)
	}
	return written, nil
}

func (w *Writer) nextName() string {
	w.counter++
	return fmt.Sprintf("%s_%02d.sql", w.base, w.counter)
}

func (w *Writer) render(name string, f splitter.Fragment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "-- File: %s\n", name)
	fmt.Fprintf(&sb, "-- Type: %s\n", f.Category.Label())
	if f.Category == classify.CTE {
		sb.WriteString("-- Note: This will be combined with main query\n")
	}
	sb.WriteString("\n")
	if f.Category == classify.Subquery {
		fmt.Fprintf(&sb, "-- Extracted subquery as CTE: %s\n", f.Alias)
	}

	sb.WriteString(f.Text)
	if f.Category.Terminated() {
		sb.WriteString(w.terminator(f.Text))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (w *Writer) renderMain(name string, frags []splitter.Fragment, refs []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "-- File: %s\n", name)
	fmt.Fprintf(&sb, "-- Type: %s\n", classify.Main.Label())
	if len(refs) > 0 {
		fmt.Fprintf(&sb, "-- References CTEs from: %s\n", strings.Join(refs, ", "))
	}
	sb.WriteString("\n")

	for _, f := range frags {
		sb.WriteString(f.Text)
		sb.WriteString(w.terminator(f.Text))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// terminator returns what must follow text so it ends the statement: ""
// when it already does, ";" normally, and "\n;" after a trailing line
// comment.
func (w *Writer) terminator(text string) string {
	toks := lexer.Tokenize(text, w.dialect)
	sig := lexer.Significant(toks)
	if len(sig) > 0 && sig[len(sig)-1].Type == token.SEMICOLON {
		return ""
	}

	// toks ends with EOF; find the last non-whitespace token.
	for i := len(toks) - 2; i >= 0; i-- {
		switch toks[i].Type {
		case token.WHITESPACE:
			continue
		case token.COMMENT:
			if token.CommentKindOf(toks[i].Literal) == token.LineComment {
				return "\n;"
			}
		}
		break
	}
	return ";"
}
