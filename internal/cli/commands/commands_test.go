package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsplit/internal/cli/config"
)

// run executes cmd standalone with a fresh configuration.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), cmd, args...)
}

func runContext(t *testing.T, ctx context.Context, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewSplitCommand(), "split <sql_file> <output_dir>", []string{"watch", "dry-run", "complexity-keywords", "reference-subqueries"}},
		{NewAuditCommand(), "audit <sql_file>", []string{"output-dir"}},
		{NewLineageCommand(), "lineage <target_dir> [-- tool args...]", []string{"ignore", "jobs", "timeout", "command"}},
		{NewServeCommand(), "serve", []string{"addr", "root"}},
		{NewExecCommand(), "exec -- <tool args...>", []string{"command"}},
		{NewInitCommand(), "init [directory]", []string{"force"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewCommandContext(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Chdir(t.TempDir())
	t.Setenv("SQLSPLIT_DIALECT", "tsql")

	cmd := &cobra.Command{Use: "probe"}
	cmd.SetContext(context.Background())
	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)

	assert.Equal(t, "tsql", cc.Dialect.Name)
	assert.NotNil(t, cc.Logger)
	assert.NotNil(t, cc.Renderer)
	assert.Same(t, cc.Cfg, config.GetCurrentConfig())
}
