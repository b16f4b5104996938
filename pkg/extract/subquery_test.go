package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
)

func TestSubqueriesExtractsComplexDerivedTable(t *testing.T) {
	blocks, rest := Subqueries("SELECT a FROM (SELECT x FROM t1 JOIN t2 ON t1.id=t2.id) sub")

	require.Len(t, blocks, 1)
	assert.Equal(t, "sub", blocks[0].Alias)
	assert.Equal(t, "SELECT x FROM t1 JOIN t2 ON t1.id=t2.id", blocks[0].Body)
	assert.Equal(t, "WITH sub AS (\nSELECT x FROM t1 JOIN t2 ON t1.id=t2.id\n)", blocks[0].Text)
	assert.Equal(t, "FROM", blocks[0].Keyword)
	assert.Equal(t, "sub", blocks[0].Reference)
	assert.Equal(t, "SELECT a FROM sub", rest)
}

func TestSubqueriesLeavesInputUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple derived table", "SELECT a FROM (SELECT a FROM t) s"},
		{"no alias", "SELECT a FROM (SELECT a FROM t GROUP BY a)"},
		{"clause keyword after paren", "SELECT a FROM (SELECT a FROM t GROUP BY a) WHERE a > 1"},
		{"not a select", "SELECT a FROM (VALUES (1), (2)) v(a)"},
		{"body opens with a nested paren", "SELECT a FROM ((SELECT a FROM t) UNION (SELECT a FROM u)) x"},
		{"alias with column list", "SELECT a FROM (SELECT a FROM t ORDER BY a) s(a)"},
		{"keyword only inside a string", "SELECT a FROM (SELECT 'x join y' AS a FROM t) s"},
		{"keyword only inside a comment", "SELECT a FROM (SELECT a /* group by */ FROM t) s"},
		{"alias on next line", "SELECT a FROM (SELECT a FROM t UNION SELECT b FROM u)\ns"},
		{"unbalanced", "SELECT a FROM (SELECT a FROM t JOIN u ON t.id = u.id s"},
		{"comment before select", "SELECT a FROM ( -- why\nSELECT a FROM t JOIN u ON t.id = u.id) s"},
		{"no derived tables", "SELECT a FROM t JOIN u ON t.id = u.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, rest := Subqueries(tt.input)
			assert.Empty(t, blocks)
			assert.Equal(t, tt.input, rest)
		})
	}
}

func TestSubqueriesRewriteForms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRest string
		wantBody []string
	}{
		{
			name:     "as alias and lower-case keyword",
			input:    "select * from (select k, count(*) c from t group by k) as agg where c > 1",
			wantRest: "select * from agg where c > 1",
			wantBody: []string{"select k, count(*) c from t group by k"},
		},
		{
			name:     "join derived table",
			input:    "SELECT * FROM a JOIN (SELECT id FROM b UNION SELECT id FROM c) u ON a.id = u.id",
			wantRest: "SELECT * FROM a JOIN u ON a.id = u.id",
			wantBody: []string{"SELECT id FROM b UNION SELECT id FROM c"},
		},
		{
			name: "two outer tables, nested one untouched",
			input: "SELECT * FROM (SELECT * FROM (SELECT id FROM x JOIN y ON x.id = y.id) inner_q GROUP BY id) o1\n" +
				"JOIN (SELECT id FROM z ORDER BY id) o2 ON o1.id = o2.id",
			wantRest: "SELECT * FROM o1\nJOIN o2 ON o1.id = o2.id",
			wantBody: []string{
				"SELECT * FROM (SELECT id FROM x JOIN y ON x.id = y.id) inner_q GROUP BY id",
				"SELECT id FROM z ORDER BY id",
			},
		},
		{
			name:     "multi-line body is trimmed",
			input:    "SELECT a\nFROM (\n  SELECT a\n  FROM t\n  HAVING count(*) > 1\n) h\n;",
			wantRest: "SELECT a\nFROM h\n;",
			wantBody: []string{"SELECT a\n  FROM t\n  HAVING count(*) > 1"},
		},
		{
			name:     "semicolon in string does not matter",
			input:    "SELECT * FROM (SELECT ';' s FROM t JOIN u ON 1=1) q",
			wantRest: "SELECT * FROM q",
			wantBody: []string{"SELECT ';' s FROM t JOIN u ON 1=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, rest := Subqueries(tt.input)
			assert.Equal(t, tt.wantRest, rest)
			require.Len(t, blocks, len(tt.wantBody))
			for i, b := range blocks {
				assert.Equal(t, tt.wantBody[i], b.Body)
			}
		})
	}
}

func TestSubqueriesAliasCollision(t *testing.T) {
	input := "SELECT * FROM (SELECT a FROM t GROUP BY a) c JOIN (SELECT a FROM u GROUP BY a) c2 ON c.a = c2.a"

	blocks, rest := Subqueries(input, WithReserved("C", "c_2"))
	require.Len(t, blocks, 2)

	assert.Equal(t, "c_3", blocks[0].Alias)
	assert.Equal(t, "c_3 c", blocks[0].Reference)
	assert.Equal(t, "WITH c_3 AS (\nSELECT a FROM t GROUP BY a\n)", blocks[0].Text)
	assert.Equal(t, "c2", blocks[1].Alias)
	assert.Equal(t, "SELECT * FROM c_3 c JOIN c2 ON c.a = c2.a", rest)
}

func TestSubqueriesRepeatedAlias(t *testing.T) {
	input := "SELECT * FROM (SELECT a FROM t JOIN u ON t.a = u.a) s UNION SELECT * FROM (SELECT a FROM v JOIN w ON v.a = w.a) s"

	blocks, rest := Subqueries(input)
	require.Len(t, blocks, 2)
	assert.Equal(t, "s", blocks[0].Alias)
	assert.Equal(t, "s_2", blocks[1].Alias)
	assert.Equal(t, "SELECT * FROM s UNION SELECT * FROM s_2 s", rest)
}

func TestSubqueriesQuotedAliasCollision(t *testing.T) {
	_, rest := Subqueries(`SELECT * FROM (SELECT a FROM t GROUP BY a) "Agg"`, WithReserved("agg"))
	assert.Equal(t, `SELECT * FROM "Agg_2" "Agg"`, rest)
}

func TestSubqueriesComplexityKeywords(t *testing.T) {
	input := "SELECT * FROM (SELECT DISTINCT a FROM t) d"

	blocks, _ := Subqueries(input)
	assert.Empty(t, blocks)

	blocks, rest := Subqueries(input, WithComplexityKeywords("distinct"))
	require.Len(t, blocks, 1)
	assert.Equal(t, "SELECT * FROM d", rest)

	blocks, _ = Subqueries("SELECT * FROM (SELECT a FROM t JOIN u ON 1=1) j", WithComplexityKeywords())
	assert.Empty(t, blocks, "an empty phrase list disables extraction")
}

func TestSubqueriesDialect(t *testing.T) {
	tsql, ok := dialect.Get("tsql")
	require.True(t, ok)

	blocks, rest := Subqueries("SELECT * FROM (SELECT [a] FROM [t] JOIN [u] ON 1=1) [q]", WithDialect(tsql))
	require.Len(t, blocks, 1)
	assert.Equal(t, "[q]", blocks[0].Alias)
	assert.Equal(t, "SELECT * FROM [q]", rest)

	// OUTPUT is reserved in tsql and cannot alias a derived table.
	blocks, _ = Subqueries("SELECT * FROM (SELECT a FROM t JOIN u ON 1=1) output", WithDialect(tsql))
	assert.Empty(t, blocks)
}
