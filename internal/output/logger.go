/*
PURPOSE:
  Builds the structured logger handed to every Bench Runner component.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.

  Implementation-discovered:
  - Needs Debug/Info/Error levels selectable from the CLI.
  - JSON output for CI log collectors.
  - No package-level logger: the logger is created once and passed explicitly.

ARCHITECTURE INTEGRATION:
  - Created by: internal/cli
  - Passed to: internal/engine, internal/executor

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  logger, err := output.NewLogger(os.Stderr, "info", "text")
  logger.Info("message", "key", "value")
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a slog.Logger writing to w. level is one of debug, info,
// warn, error; format is text or json.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q (expected text or json)", format)
}
