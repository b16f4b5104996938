package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsplit/internal/cli/testutil"
	"github.com/leapstack-labs/sqlsplit/internal/sqlfile"
)

func TestSplitCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	input := testutil.WriteScript(t, "nightly.sql", testutil.SampleScript)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, NewSplitCommand(), input, outDir)
	require.NoError(t, err)

	dir := filepath.Join(outDir, "nightly")
	want := []string{"nightly_01.sql", "nightly_02.sql", "nightly_03.sql", "nightly_04.sql", "nightly_main.sql"}
	assert.Equal(t, want, testutil.ReadDirNames(t, dir))

	lines := testutil.Lines(out)
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "SQL file split into 5 files in: "+dir, lines[0])
	assert.Equal(t, "Files created: "+strings.Join(want, ", "), lines[1])
	testutil.AssertNoANSI(t, out)

	main, err := os.ReadFile(filepath.Join(dir, "nightly_main.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "-- References CTEs from: nightly_03.sql")
	assert.Contains(t, string(main), "JOIN s\nON r.id = s.customer_id;")
}

func TestSplitCommandMissingInput(t *testing.T) {
	t.Chdir(t.TempDir())
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := run(t, NewSplitCommand(), filepath.Join(t.TempDir(), "nope.sql"), outDir)
	require.ErrorIs(t, err, sqlfile.ErrInputNotFound)
	assert.NoDirExists(t, outDir)
}

func TestSplitCommandDryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	input := testutil.WriteScript(t, "q.sql", "SELECT 1;")
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, NewSplitCommand(), input, outDir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would split SQL file into 1 files in:")
	assert.NoDirExists(t, outDir)
}

func TestSplitCommandJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SQLSPLIT_OUTPUT", "json")
	input := testutil.WriteScript(t, "q.sql", "CREATE TABLE t (id INT);\nSELECT * FROM t;")
	outDir := t.TempDir()

	out, err := run(t, NewSplitCommand(), input, outDir)
	require.NoError(t, err)

	var got SplitOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Statements)
	require.Len(t, got.Files, 2)
	assert.Equal(t, "q_01.sql", got.Files[0].Name)
	assert.Equal(t, "q_main.sql", got.Files[1].Name)
	assert.Equal(t, 1, got.Counts[0], "one DDL fragment")
}

func TestSplitCommandOptions(t *testing.T) {
	t.Chdir(t.TempDir())
	script := "SELECT * FROM (SELECT a FROM t PIVOT x) p;"
	input := testutil.WriteScript(t, "p.sql", script)
	outDir := t.TempDir()

	_, err := run(t, NewSplitCommand(), input, outDir, "--complexity-keywords", "PIVOT", "--reference-subqueries")
	require.NoError(t, err)

	main, err := os.ReadFile(filepath.Join(outDir, "p", "p_main.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "-- References CTEs from: p_01.sql")
	assert.Contains(t, string(main), "SELECT * FROM p;")
}

func TestSplitCommandWatch(t *testing.T) {
	t.Chdir(t.TempDir())
	input := testutil.WriteScript(t, "w.sql", "SELECT 1;")
	outDir := t.TempDir()
	mainPath := filepath.Join(outDir, "w", "w_main.sql")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := runContext(t, ctx, NewSplitCommand(), input, outDir, "--watch")
		done <- err
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(mainPath)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(input, []byte("SELECT 2;"), 0o644))
	require.Eventually(t, func() bool {
		b, err := os.ReadFile(mainPath)
		return err == nil && strings.Contains(string(b), "SELECT 2;")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
