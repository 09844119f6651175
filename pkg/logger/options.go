package logger

import (
	"fmt"
	"io"
	"log/slog"
)

// Option tweaks the logger built by New.
type Option func(*config)

// WithDebug lowers the minimum level to Debug. WithDebug(false) restores Info.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithLevel sets the minimum level. The last of WithLevel and WithDebug wins.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithPretty renders records with charmbracelet/log for humans at a terminal.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON renders records as JSON objects, one per line. Used for log files.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter sends output to w instead of os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.w = w
	}
}

// WithSource attaches the caller's file:line to every record.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}

// ResolveLevel maps the --debug and --log-level flags to a level. A
// non-empty name wins over debug; it accepts the slog names (debug, info,
// warn, error) in any case, with an optional offset such as "info+2".
func ResolveLevel(debug bool, name string) (slog.Level, error) {
	if name == "" {
		if debug {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: expected debug, info, warn or error", name)
	}
	return level, nil
}
