// Package lineage runs an external lineage tool over a tree of split
// outputs, one invocation per subdirectory.
package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCommand is the lineage tool invoked when none is configured.
var DefaultCommand = []string{"python3", "dlineage.py"}

// ErrNotDirectory is returned when the target is missing or not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Result is the outcome for one subdirectory.
type Result struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Output   string        `json:"-"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether the tool succeeded for this directory.
func (r Result) OK() bool { return r.Err == nil }

// Summary collects the results of a batch, in directory order.
type Summary struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

// Failures returns the failed results.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Observer receives progress. Calls are serialized.
type Observer interface {
	Started(index, total int, name string)
	Finished(index, total int, res Result)
}

// Runner invokes Command /d <dir> Args... for every subdirectory.
type Runner struct {
	Command  []string
	Args     []string
	Ignore   []string
	Jobs     int           // concurrent invocations; <= 1 runs sequentially
	Timeout  time.Duration // per invocation; 0 means none
	Executor Executor
	Observer Observer
	Logger   *slog.Logger

	mu sync.Mutex
}

// Subdirectories lists the direct subdirectories of target, sorted by name,
// skipping names in ignore.
func Subdirectories(target string, ignore []string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, target)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || slices.Contains(ignore, e.Name()) {
			continue
		}
		dirs = append(dirs, filepath.Join(target, e.Name()))
	}
	return dirs, nil
}

// Argv builds the tool invocation for one directory.
func (r *Runner) Argv(dir string) []string {
	cmd := r.Command
	if len(cmd) == 0 {
		cmd = DefaultCommand
	}
	argv := make([]string, 0, len(cmd)+2+len(r.Args))
	argv = append(argv, cmd...)
	argv = append(argv, "/d", dir)
	return append(argv, r.Args...)
}

// Run processes every subdirectory of target. Tool failures are recorded in
// the summary, not returned; the error is reserved for an unusable target or
// a cancelled context.
func (r *Runner) Run(ctx context.Context, target string) (*Summary, error) {
	dirs, err := Subdirectories(target, r.Ignore)
	if err != nil {
		return nil, err
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exe := r.Executor
	if exe == nil {
		exe = CommandExecutor{}
	}

	results := make([]Result, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	if r.Jobs > 1 {
		g.SetLimit(r.Jobs)
	} else {
		g.SetLimit(1)
	}

	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := filepath.Base(dir)
			r.notify(func(o Observer) { o.Started(i+1, len(dirs), name) })

			res := r.runOne(gctx, exe, dir)
			logger.Debug("lineage finished", "dir", name, "ok", res.OK(), "duration", res.Duration)
			results[i] = res

			r.notify(func(o Observer) { o.Finished(i+1, len(dirs), res) })
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := &Summary{Total: len(dirs), Results: results}
	for _, res := range results {
		if res.OK() {
			sum.Success++
		} else {
			sum.Failed++
		}
	}
	return sum, nil
}

func (r *Runner) runOne(ctx context.Context, exe Executor, dir string) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := exe.Run(ctx, r.Argv(dir))
	res := Result{
		Name:     filepath.Base(dir),
		Path:     dir,
		Err:      err,
		Output:   out.Stdout,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func (r *Runner) notify(fn func(Observer)) {
	if r.Observer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.Observer)
}
