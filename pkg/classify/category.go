// Package classify assigns SQL statements to output categories.
package classify

import "fmt"

// Category is the output bucket a statement fragment lands in.
type Category int

// Categories, in file-numbering order. Main is written last, to its own file.
const (
	DDL Category = iota
	TempTable
	CTE
	Subquery
	Main
)

// All lists every category in bucket order.
var All = []Category{DDL, TempTable, CTE, Subquery, Main}

// String returns the short name of the category.
func (c Category) String() string {
	switch c {
	case DDL:
		return "DDL"
	case TempTable:
		return "TempTable"
	case CTE:
		return "CTE"
	case Subquery:
		return "Subquery"
	case Main:
		return "Main"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Label returns the header label written into output files.
func (c Category) Label() string {
	switch c {
	case DDL:
		return "DDL"
	case TempTable:
		return "Temporary Table"
	case CTE:
		return "CTE (Common Table Expression)"
	case Subquery:
		return "Extracted Subquery (CTE)"
	case Main:
		return "Main Query"
	default:
		return c.String()
	}
}

// Terminated reports whether fragments of this category are written with a
// trailing semicolon. CTE and subquery fragments are prepended to the main
// query rather than executed alone.
func (c Category) Terminated() bool {
	return c != CTE && c != Subquery
}

// MarshalText implements encoding.TextMarshaler for JSON reports.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	for _, cat := range All {
		if cat.String() == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}
