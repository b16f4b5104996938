package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsplit/internal/cli/output"
	"github.com/leapstack-labs/sqlsplit/internal/lineage"
)

// ErrLineageFailed is returned when the tool failed for any directory.
var ErrLineageFailed = errors.New("lineage failed")

// progress prints per-directory progress lines.
type progress struct {
	r       *output.Renderer
	verbose bool
}

func (p progress) Started(i, n int, name string) {
	p.r.Printf("[%d/%d] Processing: %s\n", i, n, name)
}

func (p progress) Finished(_, _ int, res lineage.Result) {
	if res.OK() {
		if p.verbose {
			p.r.StatusLine(res.Name, "success", res.Duration.Round(time.Millisecond).String())
		}
		return
	}
	p.r.StatusLine(res.Name, "failed", res.Error)
	if p.verbose && res.Output != "" {
		p.r.Muted(res.Output)
	}
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lineage <target_dir> [-- tool args...]",
		Short: "Run the lineage tool over every subdirectory",
		Long: `Run the lineage tool once per direct subdirectory of target_dir, as
"<command> /d <subdir> [tool args...]". Directories run in name order; with
--jobs greater than 1 they run concurrently but are still reported in order.

The command exits non-zero when the tool fails for any directory.`,
		Example: `  sqlsplit lineage out
  sqlsplit lineage out --ignore .git --ignore archive
  sqlsplit lineage out -j 4 -- /t mssql`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args[0], args[1:])
		},
	}

	cmd.Flags().StringSlice("ignore", nil, "Subdirectory names to skip")
	cmd.Flags().IntP("jobs", "j", 1, "Directories processed concurrently")
	cmd.Flags().Duration("timeout", 0, "Timeout per directory (0 for none)")
	cmd.Flags().StringSlice("command", nil, "Lineage tool command (default: python3,dlineage.py)")
	return cmd
}

func runLineage(cmd *cobra.Command, target string, extra []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cc.Renderer
	jsonMode := r.EffectiveMode() == output.ModeJSON

	runner := &lineage.Runner{
		Command: cc.Cfg.Lineage.Command,
		Args:    append(append([]string(nil), cc.Cfg.Lineage.Args...), extra...),
		Ignore:  cc.Cfg.Lineage.Ignore,
		Jobs:    cc.Cfg.Lineage.Jobs,
		Timeout: cc.Cfg.Lineage.Timeout,
		Logger:  cc.Logger,
	}
	if !jsonMode {
		runner.Observer = progress{r: r, verbose: cc.Cfg.Verbose}
	}

	summary, err := runner.Run(cmd.Context(), target)
	if err != nil {
		return err
	}

	if jsonMode {
		if err := r.JSON(summary); err != nil {
			return err
		}
	} else if summary.Total == 0 {
		r.Printf("No subdirectories found in '%s'\n", target)
		return nil
	} else {
		renderLineageSummary(r, summary)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w for %d of %d directories", ErrLineageFailed, summary.Failed, summary.Total)
	}
	return nil
}

func renderLineageSummary(r *output.Renderer, s *lineage.Summary) {
	r.Println("")
	r.Header(2, "Summary")
	r.Printf("Total: %d\n", s.Total)
	r.Printf("Success: %d\n", s.Success)
	r.Printf("Failed: %d\n", s.Failed)

	failures := s.Failures()
	if len(failures) == 0 {
		return
	}
	r.Println("")
	r.Println("Failed directories:")
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.Name)
	}
	r.List(names)
}
