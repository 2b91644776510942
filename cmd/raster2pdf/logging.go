package main

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the CLI logger: text on w at level, debug with
// --verbose, errors only with --quiet. A valid RASTER2PDF_LOG_LEVEL wins
// over both flags.
func newLogger(w io.Writer, level slog.Level, verbose, quiet bool, envLevel string) *slog.Logger {
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	if envLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.TrimSpace(envLevel))); err == nil {
			level = l
		}
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
