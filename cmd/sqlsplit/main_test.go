// Package main provides tests for the sqlsplit CLI.
package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlsplit/internal/cli"
	"github.com/leapstack-labs/sqlsplit/internal/sqlfile"
)

const script = `CREATE TABLE t (id INT);
WITH c AS (SELECT id FROM t) SELECT * FROM c;
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "sqlsplit") {
		t.Errorf("version output should contain 'sqlsplit', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	for _, expected := range []string{"split", "audit", "lineage", "serve", "exec", "init"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestSplitShorthand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "nightly.sql")
	if err := os.WriteFile(input, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	output, err := execute(t, input, outDir)
	if err != nil {
		t.Fatalf("split error = %v", err)
	}

	want := "SQL file split into 3 files in: " + filepath.Join(outDir, "nightly")
	if !strings.Contains(output, want) {
		t.Errorf("output should contain %q, got: %s", want, output)
	}
	if !strings.Contains(output, "Files created: nightly_01.sql, nightly_02.sql, nightly_main.sql") {
		t.Errorf("unexpected file list: %s", output)
	}

	main, err := os.ReadFile(filepath.Join(outDir, "nightly", "nightly_main.sql"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(main), "SELECT * FROM c;") {
		t.Errorf("main file missing query: %s", main)
	}
}

func TestSplitMissingInput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, filepath.Join(t.TempDir(), "missing.sql"), outDir)
	if !errors.Is(err, sqlfile.ErrInputNotFound) {
		t.Fatalf("error = %v, want ErrInputNotFound", err)
	}
	if cli.ExitCode(err) != 1 {
		t.Errorf("exit code = %d, want 1", cli.ExitCode(err))
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Errorf("output directory should not exist")
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "splt")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error = %v, want unknown command", err)
	}
}
