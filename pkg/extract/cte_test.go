package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCTE(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantCTE       string
		wantRemainder string
	}{
		{
			name:          "simple",
			input:         "WITH c AS (SELECT 1) SELECT * FROM c",
			wantCTE:       "WITH c AS (SELECT 1)",
			wantRemainder: "SELECT * FROM c",
		},
		{
			name:          "multiple definitions",
			input:         "WITH a AS (SELECT 1), b AS (SELECT * FROM a)\nSELECT * FROM b;",
			wantCTE:       "WITH a AS (SELECT 1), b AS (SELECT * FROM a)",
			wantRemainder: "SELECT * FROM b;",
		},
		{
			name:          "recursive with column list",
			input:         "with recursive n(i) as (select 1 union all select i+1 from n) select i from n",
			wantCTE:       "with recursive n(i) as (select 1 union all select i+1 from n)",
			wantRemainder: "select i from n",
		},
		{
			name:          "insert keeps its prefix",
			input:         "INSERT INTO t WITH c AS (SELECT 1 AS x) SELECT x FROM c",
			wantCTE:       "WITH c AS (SELECT 1 AS x)",
			wantRemainder: "INSERT INTO t SELECT x FROM c",
		},
		{
			name:          "leading comment stays with the query",
			input:         "-- daily\nWITH c AS (SELECT 1) SELECT * FROM c",
			wantCTE:       "WITH c AS (SELECT 1)",
			wantRemainder: "-- daily\nSELECT * FROM c",
		},
		{
			name:          "keywords inside strings are ignored",
			input:         "WITH c AS (SELECT ') select (' AS s) SELECT s FROM c",
			wantCTE:       "WITH c AS (SELECT ') select (' AS s)",
			wantRemainder: "SELECT s FROM c",
		},
		{
			name:          "no with clause",
			input:         "SELECT * FROM t",
			wantRemainder: "SELECT * FROM t",
		},
		{
			name:          "table hint is not a cte",
			input:         "SELECT * FROM t WITH (NOLOCK)",
			wantRemainder: "SELECT * FROM t WITH (NOLOCK)",
		},
		{
			name:          "with time zone before union",
			input:         "SELECT a::timestamp with time zone AS ts FROM t UNION ALL SELECT b FROM u",
			wantRemainder: "SELECT a::timestamp with time zone AS ts FROM t UNION ALL SELECT b FROM u",
		},
		{
			name:          "with rollup before union",
			input:         "SELECT a, count(*) FROM t GROUP BY a WITH ROLLUP UNION ALL SELECT b, 1 FROM u",
			wantRemainder: "SELECT a, count(*) FROM t GROUP BY a WITH ROLLUP UNION ALL SELECT b, 1 FROM u",
		},
		{
			name:          "with ties",
			input:         "SELECT TOP 5 WITH TIES a FROM t ORDER BY a",
			wantRemainder: "SELECT TOP 5 WITH TIES a FROM t ORDER BY a",
		},
		{
			name:          "view with check option",
			input:         "CREATE VIEW v AS SELECT a FROM t WITH CHECK OPTION",
			wantRemainder: "CREATE VIEW v AS SELECT a FROM t WITH CHECK OPTION",
		},
		{
			name:          "leading with that is not a cte",
			input:         "WITH ROLLUP SELECT 1",
			wantRemainder: "WITH ROLLUP SELECT 1",
		},
		{
			name:          "insert with column list",
			input:         "INSERT INTO s.t (a, b) WITH c AS (SELECT 1, 2) SELECT * FROM c",
			wantCTE:       "WITH c AS (SELECT 1, 2)",
			wantRemainder: "INSERT INTO s.t (a, b) SELECT * FROM c",
		},
		{
			name:          "keyword as cte name",
			input:         "WITH temp AS (SELECT 1) SELECT * FROM temp",
			wantCTE:       "WITH temp AS (SELECT 1)",
			wantRemainder: "SELECT * FROM temp",
		},
		{
			name:          "nested with only",
			input:         "SELECT * FROM (WITH c AS (SELECT 1) SELECT * FROM c) x",
			wantRemainder: "SELECT * FROM (WITH c AS (SELECT 1) SELECT * FROM c) x",
		},
		{
			name:          "no main query",
			input:         "WITH c AS (SELECT 1)",
			wantRemainder: "WITH c AS (SELECT 1)",
		},
		{
			name:          "unbalanced",
			input:         "WITH c AS (SELECT 1 SELECT 2",
			wantRemainder: "WITH c AS (SELECT 1 SELECT 2",
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cte, rest := CTE(tt.input)
			assert.Equal(t, tt.wantCTE, cte)
			assert.Equal(t, tt.wantRemainder, rest)
		})
	}
}

func TestCTENames(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"WITH c AS (SELECT 1)", []string{"c"}},
		{"WITH a AS (SELECT 1, 2), b(x) AS (SELECT 3)", []string{"a", "b"}},
		{"WITH RECURSIVE \"Tree\" AS (SELECT 1)", []string{`"Tree"`}},
		{"SELECT 1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CTENames(tt.input))
		})
	}
}
