package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return lvl, nil
}

// NewLogger builds the diagnostic logger described by c, writing to w.
// Every record carries the run_id of this invocation.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(c.Format) {
	case LogFormatJSON:
		h = slog.NewJSONHandler(w, opts)
	case LogFormatText, "":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q (must be text or json)", c.Format)
	}
	return slog.New(h).With("run_id", uuid.NewString()), nil
}
