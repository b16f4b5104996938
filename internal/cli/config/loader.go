package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey keys the run logger in a command context.
type loggerKey struct{}

// EnvPrefix prefixes every environment variable read as configuration.
// A double underscore separates nesting levels: SQLSPLIT_LOG__LEVEL is log.level.
const EnvPrefix = "SQLSPLIT_"

// FileNames are the config file names searched for, in order.
var FileNames = []string{"sqlsplit.yaml", "sqlsplit.yml"}

// maxUpwardSearchLevels bounds the parent directories visited by findConfigFile.
const maxUpwardSearchLevels = 10

// flagKeys maps flag names whose config key is not the snake_case flag name.
var flagKeys = map[string]string{
	"log-level":            "log.level",
	"log-format":           "log.format",
	"complexity-keywords":  "split.complexity_keywords",
	"reference-subqueries": "split.reference_subqueries",
	"output-dir":           "audit.output_dir",
	"command":              "lineage.command",
	"ignore":               "lineage.ignore",
	"jobs":                 "lineage.jobs",
	"timeout":              "lineage.timeout",
	"addr":                 "serve.addr",
	"root":                 "serve.root",
}

// State of the most recent LoadConfig.
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configIn returns the config file in dir, if any.
func configIn(dir string) string {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigFile searches startDir and its parents for a config file.
func findConfigFile(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// ResetConfig forgets the loaded configuration so tests start clean.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from defaults, file, environment variables
// and flags. Precedence (highest to lowest): flags > env vars > config file > defaults.
// An explicit cfgFile must exist; otherwise the working directory and its
// parents are searched.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")
	configFileUsed = ""

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
	} else if cwd, err := os.Getwd(); err == nil {
		configFileUsed = findConfigFile(cwd)
	}
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment: SQLSPLIT_SPLIT__REFERENCE_SUBQUERIES -> split.reference_subqueries
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// 4. Flags, only those set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	// 5. Decode; comma separated strings become slices, "30s" a duration.
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			TagName:          "koanf",
			Result:           &cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// defaultValues flattens Default() into koanf keys.
func defaultValues() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"dialect":                    d.Dialect,
		"verbose":                    d.Verbose,
		"output":                     d.OutputFormat,
		"encoding":                   d.Encoding,
		"log.level":                  d.Log.Level,
		"log.format":                 d.Log.Format,
		"split.complexity_keywords":  d.Split.ComplexityKeywords,
		"split.reference_subqueries": d.Split.ReferenceSubqueries,
		"audit.output_dir":           d.Audit.OutputDir,
		"lineage.command":            d.Lineage.Command,
		"lineage.jobs":               d.Lineage.Jobs,
		"lineage.timeout":            d.Lineage.Timeout.String(),
		"serve.addr":                 d.Serve.Addr,
		"serve.root":                 d.Serve.Root,
	}
}

// GetConfigFileUsed returns the file read by the last LoadConfig, or "".
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the configuration loaded by the last LoadConfig.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key the root command stores its logger under.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger returns the logger stored in ctx, or one that discards everything.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
