package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsplit/internal/audit"
	"github.com/leapstack-labs/sqlsplit/internal/cli/output"
	"github.com/leapstack-labs/sqlsplit/internal/sqlfile"
)

// AuditOutput is the JSON form of an audit run.
type AuditOutput struct {
	Input    string          `json:"input"`
	CSV      string          `json:"csv"`
	Findings []audit.Finding `json:"findings"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <sql_file>",
		Short: "List DELETE and TRUNCATE statements",
		Long: `Find every DELETE and TRUNCATE statement in a SQL script and record the
target table and WHERE condition in <output_dir>/<script name>_delete.csv.`,
		Example: `  sqlsplit audit reports/daily.sql
  sqlsplit audit reports/daily.sql --output-dir audits`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, args[0])
		},
	}

	cmd.Flags().StringP("output-dir", "d", "", "Directory for the CSV report (default: current directory)")
	return cmd
}

func runAudit(cmd *cobra.Command, input string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	script, err := sqlfile.Read(input, cc.Cfg.Encoding)
	if err != nil {
		return err
	}
	findings := audit.Analyze(script, input, cc.Dialect)

	dir := cc.Cfg.Audit.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := audit.OutputPath(dir, input)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := audit.WriteCSV(f, findings); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cc.Logger.Info("audit complete", "input", input, "csv", path, "findings", len(findings))

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if findings == nil {
			findings = []audit.Finding{}
		}
		return r.JSON(AuditOutput{Input: input, CSV: path, Findings: findings})
	}

	r.Printf("Analysis complete. Results written to: %s\n", path)
	r.Printf("Found %d DELETE/TRUNCATE statements\n", len(findings))
	if len(findings) > 0 {
		r.Println("")
		rows := make([][]string, 0, len(findings))
		for _, fd := range findings {
			rows = append(rows, []string{strconv.Itoa(fd.Line), fd.Operation, fd.Table, fd.Condition})
		}
		r.Table([]string{"Line", "Operation", "Table", "Condition"}, rows)
	}
	return nil
}
