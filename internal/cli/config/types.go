// Package config provides configuration management for the sqlsplit CLI.
//
// Values are layered from defaults, a sqlsplit.yaml file, SQLSPLIT_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/sqlsplit/internal/lineage"
	"github.com/leapstack-labs/sqlsplit/internal/server"
	"github.com/leapstack-labs/sqlsplit/internal/sqlfile"
	"github.com/leapstack-labs/sqlsplit/pkg/dialect"
	"github.com/leapstack-labs/sqlsplit/pkg/extract"
)

// Config holds all CLI configuration options.
type Config struct {
	Dialect      string        `koanf:"dialect" yaml:"dialect"`
	Verbose      bool          `koanf:"verbose" yaml:"verbose"`
	OutputFormat string        `koanf:"output" yaml:"output"`
	Encoding     string        `koanf:"encoding" yaml:"encoding"`
	Log          LogConfig     `koanf:"log" yaml:"log"`
	Split        SplitConfig   `koanf:"split" yaml:"split"`
	Audit        AuditConfig   `koanf:"audit" yaml:"audit"`
	Lineage      LineageConfig `koanf:"lineage" yaml:"lineage"`
	Serve        ServeConfig   `koanf:"serve" yaml:"serve"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// SplitConfig tunes fragment extraction.
type SplitConfig struct {
	ComplexityKeywords  []string `koanf:"complexity_keywords" yaml:"complexity_keywords"`
	ReferenceSubqueries bool     `koanf:"reference_subqueries" yaml:"reference_subqueries"`
}

// AuditConfig configures the DELETE/TRUNCATE audit.
type AuditConfig struct {
	OutputDir string `koanf:"output_dir" yaml:"output_dir"`
}

// LineageConfig configures batch lineage runs.
type LineageConfig struct {
	Command []string      `koanf:"command" yaml:"command"`
	Args    []string      `koanf:"args" yaml:"args,omitempty"`
	Ignore  []string      `koanf:"ignore" yaml:"ignore,omitempty"`
	Jobs    int           `koanf:"jobs" yaml:"jobs"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
}

// ServeConfig configures the static file server.
type ServeConfig struct {
	Addr string `koanf:"addr" yaml:"addr"`
	Root string `koanf:"root" yaml:"root"`
}

// Default configuration values.
const (
	DefaultDialect   = "ansi"
	DefaultOutput    = "auto" // TTY=text, non-TTY=markdown
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultAuditDir  = "."
	DefaultJobs      = 1
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dialect:      DefaultDialect,
		OutputFormat: DefaultOutput,
		Encoding:     sqlfile.DefaultCharset,
		Log:          LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Split: SplitConfig{
			ComplexityKeywords: append([]string(nil), extract.DefaultComplexityKeywords...),
		},
		Audit: AuditConfig{OutputDir: DefaultAuditDir},
		Lineage: LineageConfig{
			Command: append([]string(nil), lineage.DefaultCommand...),
			Jobs:    DefaultJobs,
		},
		Serve: ServeConfig{Addr: server.DefaultAddr, Root: server.DefaultRoot},
	}
}

// SQLDialect resolves the configured dialect.
func (c *Config) SQLDialect() (*dialect.Dialect, error) {
	return dialect.Lookup(c.Dialect)
}
