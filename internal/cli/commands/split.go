package commands

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqlsplit/internal/cli/output"
	"github.com/leapstack-labs/sqlsplit/internal/sqlfile"
	"github.com/leapstack-labs/sqlsplit/internal/watch"
	"github.com/leapstack-labs/sqlsplit/internal/writer"
	"github.com/leapstack-labs/sqlsplit/pkg/classify"
	"github.com/leapstack-labs/sqlsplit/pkg/splitter"
)

// SplitOptions are the flags of the split command.
type SplitOptions struct {
	Watch  bool
	DryRun bool
}

// SplitOutput is the JSON form of a split run.
type SplitOutput struct {
	Input      string                    `json:"input"`
	OutputDir  string                    `json:"output_dir"`
	Statements int                       `json:"statements"`
	Counts     map[classify.Category]int `json:"counts"`
	Files      []writer.File             `json:"files"`
	DryRun     bool                      `json:"dry_run,omitempty"`
}

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	var opts SplitOptions

	cmd := &cobra.Command{
		Use:   "split <sql_file> <output_dir>",
		Short: "Split a SQL script into categorized files",
		Long: `Split a SQL script into one file per fragment.

Statements are classified as DDL, temporary tables or main queries. WITH
clauses and complex derived tables of main queries are extracted into their
own CTE files. Everything is written to <output_dir>/<script name>/:

  <name>_01.sql ...   DDL, temporary tables, CTEs and subqueries, numbered
  <name>_main.sql     the remaining main queries`,
		Example: `  # Split a script
  sqlsplit split reports/daily.sql out

  # Show the files that would be written
  sqlsplit split reports/daily.sql out --dry-run

  # Re-split whenever the script changes
  sqlsplit split reports/daily.sql out --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunSplit(cmd, args[0], args[1], opts)
		},
	}

	AddSplitFlags(cmd.Flags(), &opts)
	return cmd
}

// AddSplitFlags registers the split flags on fs. The root command shares
// them for its "sqlsplit <sql_file> <output_dir>" form.
func AddSplitFlags(fs *pflag.FlagSet, opts *SplitOptions) {
	fs.BoolVarP(&opts.Watch, "watch", "w", false, "Re-split when the input file changes")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print the planned files without writing them")
	fs.StringSlice("complexity-keywords", nil, "Keywords that make a derived table worth extracting")
	fs.Bool("reference-subqueries", false, "List subquery files in the main file's references")
}

// RunSplit splits input into outputDir/<base>.
func RunSplit(cmd *cobra.Command, input, outputDir string, opts SplitOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	once := func() error { return splitOnce(cc, input, outputDir, opts) }
	if err := once(); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	cc.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", input))
	return watch.File(cmd.Context(), input, watch.DefaultDebounce, cc.Logger, once)
}

func splitOnce(cc *CommandContext, input, outputDir string, opts SplitOptions) error {
	script, err := sqlfile.Read(input, cc.Cfg.Encoding)
	if err != nil {
		return err
	}

	s := splitter.New(
		splitter.WithDialect(cc.Dialect),
		splitter.WithComplexityKeywords(cc.Cfg.Split.ComplexityKeywords),
		splitter.WithLogger(cc.Logger),
	)
	res := s.Split(script)

	base := sqlfile.BaseName(input)
	dir := filepath.Join(outputDir, base)
	w := writer.New(dir, base,
		writer.WithSubqueryReferences(cc.Cfg.Split.ReferenceSubqueries),
		writer.WithDialect(cc.Dialect),
		writer.WithLogger(cc.Logger),
	)

	files := w.Plan(res)
	if !opts.DryRun {
		if _, err := w.WriteFiles(files); err != nil {
			return err
		}
	}
	cc.Logger.Info("split complete",
		"input", input, "dir", dir, "statements", res.Statements, "files", len(files), "dry_run", opts.DryRun)

	return renderSplit(cc.Renderer, SplitOutput{
		Input:      input,
		OutputDir:  dir,
		Statements: res.Statements,
		Counts:     res.Counts(),
		Files:      files,
		DryRun:     opts.DryRun,
	})
}

func renderSplit(r *output.Renderer, out SplitOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	names := make([]string, 0, len(out.Files))
	for _, f := range out.Files {
		names = append(names, f.Name)
	}
	sorted := slices.Clone(names)
	slices.Sort(sorted)

	if out.DryRun {
		r.Printf("Would split SQL file into %d files in: %s\n", len(names), out.OutputDir)
	} else {
		r.Printf("SQL file split into %d files in: %s\n", len(names), out.OutputDir)
	}
	r.Printf("Files created: %s\n", strings.Join(sorted, ", "))

	if r.EffectiveMode() == output.ModeText && len(out.Files) > 0 {
		r.Println("")
		rows := make([][]string, 0, len(out.Files))
		for _, f := range out.Files {
			rows = append(rows, []string{f.Name, r.Category(f.Category.String(), f.Category.Label()), strings.Join(f.References, ", ")})
		}
		r.Table([]string{"File", "Type", "References"}, rows)
	}
	return nil
}
