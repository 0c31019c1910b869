package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Log formats accepted by [CreateHandler].
const (
	FormatText   = "text"
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

var (
	// ErrInvalidLevel indicates an unknown log level name.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidFormat indicates an unknown log format name.
	ErrInvalidFormat = errors.New("invalid log format")
)

// ParseLevel converts a level name to a [slog.Level].
func ParseLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, logLevel)
}

// CreateHandler creates a [slog.Handler] writing to w. The text and logfmt
// formats render via [charmlog.Logger], json via [slog.NewJSONHandler].
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(logFormat) {
	case FormatText:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			Formatter:       charmlog.TextFormatter,
		}), nil
	case FormatLogfmt:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			Formatter:       charmlog.LogfmtFormatter,
		}), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, logFormat)
}
