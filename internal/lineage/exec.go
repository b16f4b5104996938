package lineage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Output is what one tool invocation produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs an external command.
type Executor interface {
	Run(ctx context.Context, argv []string) (Output, error)
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// CommandExecutor runs commands with os/exec.
type CommandExecutor struct {
	Dir string // working directory; empty means the current one
}

// Run executes argv and captures its output.
func (e CommandExecutor) Run(ctx context.Context, argv []string) (Output, error) {
	if len(argv) == 0 {
		return Output{}, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, &ExitError{Code: out.ExitCode, Stderr: strings.TrimSpace(out.Stderr)}
	}
	if err != nil {
		return out, fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return out, nil
}

// Passthrough runs argv with the given standard streams attached and
// returns its exit code. A command that cannot be started is an error.
func Passthrough(ctx context.Context, argv []string, dir string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return 0, nil
}
