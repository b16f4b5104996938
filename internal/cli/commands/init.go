package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlsplit/internal/cli/config"
	"github.com/leapstack-labs/sqlsplit/internal/cli/output"
)

const configHeader = `# sqlsplit configuration.
# Every key can also be set with a SQLSPLIT_ environment variable
# (SQLSPLIT_LINEAGE__JOBS=4) or a command-line flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default sqlsplit.yaml",
		Long: `Write a sqlsplit.yaml holding the default configuration, ready to edit.

sqlsplit looks for sqlsplit.yaml in the working directory and its parents.`,
		Example: `  # Initialize in current directory
  sqlsplit init

  # Force overwrite existing config
  sqlsplit init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, config.FileNames[0])
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.FileNames[0])
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.StatusLine(path, "success", "")
	r.Println("")
	r.Success("sqlsplit configuration initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Adjust dialect and split.complexity_keywords")
	r.Println("  2. Run 'sqlsplit split <sql_file> <output_dir>'")
	return nil
}
