package lineage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsplit/internal/testutil"
)

type fakeExecutor struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]bool // directory base names that fail
}

func (f *fakeExecutor) Run(_ context.Context, argv []string) (Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, argv)
	f.mu.Unlock()

	dir := filepath.Base(argv[len(argv)-1])
	for i, a := range argv {
		if a == "/d" {
			dir = filepath.Base(argv[i+1])
		}
	}
	if f.fail[dir] {
		return Output{Stderr: "boom", ExitCode: 2}, &ExitError{Code: 2, Stderr: "boom"}
	}
	return Output{Stdout: "ok"}, nil
}

type recorder struct {
	lines []string
}

func (r *recorder) Started(i, n int, name string) {
	r.lines = append(r.lines, "start "+name)
}

func (r *recorder) Finished(i, n int, res Result) {
	r.lines = append(r.lines, "done "+res.Name)
}

func makeTree(t *testing.T, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.sql"), []byte("SELECT 1"), 0o600))
	return root
}

func TestSubdirectories(t *testing.T) {
	root := makeTree(t, "b", "a", ".git", "c")

	dirs, err := Subdirectories(root, []string{".git"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a"), filepath.Join(root, "b"), filepath.Join(root, "c"),
	}, dirs)

	_, err = Subdirectories(filepath.Join(root, "stray.sql"), nil)
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = Subdirectories(filepath.Join(root, "missing"), nil)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestRunnerSequential(t *testing.T) {
	root := makeTree(t, "one", "two", "three")
	exe := &fakeExecutor{fail: map[string]bool{"two": true}}
	rec := &recorder{}

	r := &Runner{
		Command:  []string{"tool"},
		Args:     []string{"/t", "oracle", "/json"},
		Executor: exe,
		Observer: rec,
		Logger:   testutil.NewTestLogger(t),
	}
	sum, err := r.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Success)
	assert.Equal(t, 1, sum.Failed)

	failed := sum.Failures()
	require.Len(t, failed, 1)
	assert.Equal(t, "two", failed[0].Name)
	assert.Equal(t, "boom", failed[0].Error)

	assert.Equal(t, []string{"tool", "/d", filepath.Join(root, "one"), "/t", "oracle", "/json"}, exe.calls[0])
	assert.Equal(t, []string{
		"start one", "done one", "start three", "done three", "start two", "done two",
	}, rec.lines)
}

func TestRunnerParallelKeepsOrder(t *testing.T) {
	names := []string{"d1", "d2", "d3", "d4", "d5", "d6"}
	root := makeTree(t, names...)

	r := &Runner{Jobs: 3, Executor: &fakeExecutor{}}
	sum, err := r.Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, sum.Results, len(names))
	for i, res := range sum.Results {
		assert.Equal(t, names[i], res.Name)
		assert.True(t, res.OK())
	}
}

func TestRunnerEmptyTarget(t *testing.T) {
	root := makeTree(t)
	sum, err := (&Runner{Executor: &fakeExecutor{}}).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Total)
}

func TestRunnerDefaultCommand(t *testing.T) {
	argv := (&Runner{}).Argv("x")
	assert.Equal(t, "python3 dlineage.py /d x", strings.Join(argv, " "))
}

func TestRunnerCancelled(t *testing.T) {
	root := makeTree(t, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Runner{Executor: &fakeExecutor{}}).Run(ctx, root)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", (&ExitError{Code: 1, Stderr: "boom"}).Error())
	assert.Equal(t, "exit status 3", (&ExitError{Code: 3}).Error())
}
