package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FORMAT_TEXT = "text"
	FORMAT_JSON = "json"
)

// Stdout carries the stage trace, so nothing below WARN is shown unless asked for.
const DEFAULT_LEVEL = slog.LevelWarn

var ERR_BAD_FORMAT = errors.New("Log format must be text or json")

// Builds a logger writing to w.  An empty level or format selects DEFAULT_LEVEL and FORMAT_TEXT.
func New(w io.Writer, level string, format string) (*slog.Logger, error) {
	lvl := new(slog.LevelVar)
	lvl.Set(DEFAULT_LEVEL)
	if level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("Invalid log level: %q, error was %w", level, err)
		}
		lvl.Set(l)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", FORMAT_TEXT:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FORMAT_JSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, ERR_BAD_FORMAT
}
