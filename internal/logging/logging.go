// Package logging installs the process-wide slog logger. Dev builds log to
// stdout; builds tagged prod log to a rotating file instead.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Options configures New.
type Options struct {
	Level slog.Level
	// Dir holds the rotating log file in prod builds. Empty means the
	// user config dir.
	Dir string
	// Tee gets a copy of every line, e.g. the desktop log panel.
	Tee io.Writer
}

// New builds the text logger, makes it the slog default and returns a func
// that closes the log sink.
func New(opts Options) (*slog.Logger, func() error, error) {
	out, closeSink, err := openSink(opts.Dir)
	if err != nil {
		return nil, nil, err
	}
	if opts.Tee != nil {
		out = io.MultiWriter(out, opts.Tee)
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: opts.Level}))
	slog.SetDefault(logger)
	return logger, closeSink, nil
}

// ParseLevel maps the config's log level. Unknown values yield Info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
