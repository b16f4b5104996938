// Package splitter decomposes SQL scripts into categorized fragments.
//
// A script is segmented into statements, each statement is classified, and
// statements that are neither DDL nor temporary-table creation have their
// WITH clause and complex derived tables lifted out. What remains of each
// statement is its main query.
package splitter

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqlsplit/pkg/classify"
	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
	"github.com/leapstack-labs/sqlsplit/pkg/extract"
	"github.com/leapstack-labs/sqlsplit/pkg/segment"
	"github.com/leapstack-labs/sqlsplit/pkg/token"
)

// Fragment is one piece of a statement routed to a category bucket.
type Fragment struct {
	Category  classify.Category `json:"category"`
	Text      string            `json:"text"`
	Statement int               `json:"statement"`       // Index of the source statement
	Alias     string            `json:"alias,omitempty"` // CTE name, Subquery fragments only
	Rule      string            `json:"rule,omitempty"`  // classifier rule that matched
}

// Result holds the fragments of one script, bucketed by category. Each
// bucket keeps source statement order.
type Result struct {
	DDL        []Fragment `json:"ddl"`
	TempTables []Fragment `json:"temp_tables"`
	CTEs       []Fragment `json:"ctes"`
	Subqueries []Fragment `json:"subqueries"`
	Main       []Fragment `json:"main"`

	Statements int `json:"statements"` // statements seen after segmentation
}

// Bucket returns the fragments of one category.
func (r *Result) Bucket(c classify.Category) []Fragment {
	switch c {
	case classify.DDL:
		return r.DDL
	case classify.TempTable:
		return r.TempTables
	case classify.CTE:
		return r.CTEs
	case classify.Subquery:
		return r.Subqueries
	case classify.Main:
		return r.Main
	}
	return nil
}

// Fragments returns every fragment in bucket order.
func (r *Result) Fragments() []Fragment {
	out := make([]Fragment, 0, r.Len())
	for _, c := range classify.All {
		out = append(out, r.Bucket(c)...)
	}
	return out
}

// Len returns the number of fragments across all buckets.
func (r *Result) Len() int {
	return len(r.DDL) + len(r.TempTables) + len(r.CTEs) + len(r.Subqueries) + len(r.Main)
}

// Counts returns the number of fragments per category.
func (r *Result) Counts() map[classify.Category]int {
	counts := make(map[classify.Category]int, len(classify.All))
	for _, c := range classify.All {
		counts[c] = len(r.Bucket(c))
	}
	return counts
}

func (r *Result) add(f Fragment) {
	switch f.Category {
	case classify.DDL:
		r.DDL = append(r.DDL, f)
	case classify.TempTable:
		r.TempTables = append(r.TempTables, f)
	case classify.CTE:
		r.CTEs = append(r.CTEs, f)
	case classify.Subquery:
		r.Subqueries = append(r.Subqueries, f)
	default:
		r.Main = append(r.Main, f)
	}
}

// Splitter splits scripts. A Splitter holds no per-run state and may be
// shared across goroutines.
type Splitter struct {
	dialect    *dialect.Dialect
	classifier *classify.Classifier
	phrases    []string
	logger     *slog.Logger
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithDialect selects the SQL dialect. Defaults to dialect.Default().
func WithDialect(d *dialect.Dialect) Option {
	return func(s *Splitter) { s.dialect = d }
}

// WithClassifier replaces the default rule set.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Splitter) { s.classifier = c }
}

// WithComplexityKeywords sets the phrases that make a derived table
// extractable. Nil keeps extract.DefaultComplexityKeywords.
func WithComplexityKeywords(phrases []string) Option {
	return func(s *Splitter) { s.phrases = phrases }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Splitter) { s.logger = l }
}

// New creates a Splitter.
func New(opts ...Option) *Splitter {
	s := &Splitter{}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialect == nil {
		s.dialect = dialect.Default()
	}
	if s.classifier == nil {
		s.classifier = classify.Default()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Split decomposes script. It never fails: statements the heuristics cannot
// handle land in Main unchanged.
func (s *Splitter) Split(script string) *Result {
	stmts := segment.Split(script,
		segment.WithDialect(s.dialect),
		segment.OnDropped(func(text string, pos token.Position) {
			s.logger.Debug("dropped comment-only fragment", "pos", pos.String(), "bytes", len(text))
		}),
	)

	res := &Result{Statements: len(stmts)}
	for _, stmt := range stmts {
		for _, f := range s.SplitStatement(stmt) {
			res.add(f)
		}
	}

	s.logger.Debug("split script",
		"statements", len(stmts),
		"ddl", len(res.DDL),
		"temp_tables", len(res.TempTables),
		"ctes", len(res.CTEs),
		"subqueries", len(res.Subqueries),
		"main", len(res.Main))
	return res
}

// SplitStatement routes one statement. DDL and temporary-table statements
// yield a single fragment; other statements yield at most one CTE fragment,
// any number of Subquery fragments and one Main fragment.
func (s *Splitter) SplitStatement(stmt segment.Statement) []Fragment {
	cat, rule := s.classifier.Classify(stmt)
	s.logger.Debug("classified statement", "index", stmt.Index, "pos", stmt.Pos.String(), "category", cat, "rule", rule)

	if cat != classify.Main {
		return []Fragment{{Category: cat, Text: stmt.Text, Statement: stmt.Index, Rule: rule}}
	}

	var out []Fragment
	text := stmt.Text

	cte, rest := extract.CTE(text, extract.WithDialect(s.dialect))
	var reserved []string
	if cte != "" {
		reserved = extract.CTENames(cte, extract.WithDialect(s.dialect))
		out = append(out, Fragment{Category: classify.CTE, Text: cte, Statement: stmt.Index, Rule: "with-clause"})
		text = rest
	}

	subOpts := []extract.Option{extract.WithDialect(s.dialect), extract.WithReserved(reserved...)}
	if s.phrases != nil {
		subOpts = append(subOpts, extract.WithComplexityKeywords(s.phrases...))
	}
	blocks, rest := extract.Subqueries(text, subOpts...)
	for _, b := range blocks {
		s.logger.Debug("extracted subquery", "index", stmt.Index, "alias", b.Alias, "keyword", b.Keyword)
		out = append(out, Fragment{Category: classify.Subquery, Text: b.Text, Statement: stmt.Index, Alias: b.Alias, Rule: "derived-table"})
	}

	if strings.TrimSpace(rest) != "" {
		out = append(out, Fragment{Category: classify.Main, Text: rest, Statement: stmt.Index, Rule: rule})
	}
	return out
}
