package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsplit/internal/cli/config"
	"github.com/leapstack-labs/sqlsplit/internal/cli/output"
	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Dialect  *dialect.Dialect
}

// NewCommandContext collects the config, logger and renderer for cmd.
//
// The root command loads the configuration before any subcommand runs. A
// subcommand executed on its own (as in tests) loads it here from its flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	d, err := cfg.SQLDialect()
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Dialect:  d,
	}, nil
}

// getConfig returns the current configuration, loading it on first use.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", cmd.Flags())
}
