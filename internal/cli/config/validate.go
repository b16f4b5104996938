package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlsplit/internal/cli/output"
	"github.com/leapstack-labs/sqlsplit/internal/sqlfile"
	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %w", err)
	}
	if !slices.Contains(output.Modes, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (must be one of %s)",
			c.OutputFormat, strings.Join(output.Modes, ", "))
	}
	if _, err := sqlfile.Lookup(c.Encoding); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", c.Log.Format)
	}
	if c.Lineage.Jobs < 1 {
		return fmt.Errorf("lineage.jobs must be at least 1, got %d", c.Lineage.Jobs)
	}
	if c.Lineage.Timeout < 0 {
		return fmt.Errorf("lineage.timeout must not be negative")
	}
	for _, kw := range c.Split.ComplexityKeywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("split.complexity_keywords contains an empty entry")
		}
	}
	return nil
}
