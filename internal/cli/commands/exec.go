package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsplit/internal/lineage"
)

// ExitCodeError carries the exit code of a child process that already
// reported its own failure.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec -- <tool args...>",
		Short: "Run the lineage tool with the given arguments",
		Long: `Run the configured lineage tool directly, passing every argument through
and exiting with its exit code.`,
		Example: `  sqlsplit exec -- /f out/daily/daily_main.sql /t mssql`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			command := cc.Cfg.Lineage.Command
			if len(command) == 0 {
				command = lineage.DefaultCommand
			}
			argv := append(append([]string(nil), command...), args...)
			cc.Logger.Debug("exec", "argv", argv)

			code, err := lineage.Passthrough(cmd.Context(), argv, "", os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitCodeError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("command", nil, "Lineage tool command (default: python3,dlineage.py)")
	return cmd
}
