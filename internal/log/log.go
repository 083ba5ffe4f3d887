// Package log provides the CLI's structured logger and colored console
// messages.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()

// ErrorMsg prints an error message to stderr in red color.
func ErrorMsg(format string, a ...interface{}) {
	ErrorTo(os.Stderr, format, a...)
}

// WarnMsg prints a warning to stderr in yellow color.
func WarnMsg(format string, a ...interface{}) {
	WarnTo(os.Stderr, format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func InfoMsg(format string, a ...interface{}) {
	InfoTo(os.Stderr, format, a...)
}

// ErrorTo is ErrorMsg writing to w.
func ErrorTo(w io.Writer, format string, a ...interface{}) {
	red(w, "[!] Error: "+format, a...)
}

// WarnTo is WarnMsg writing to w.
func WarnTo(w io.Writer, format string, a ...interface{}) {
	yellow(w, "[-] Warning: "+format, a...)
}

// InfoTo is InfoMsg writing to w.
func InfoTo(w io.Writer, format string, a ...interface{}) {
	blue(w, "[+] "+format, a...)
}

// Config selects the logger's level and encoding.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// New builds a logger writing to w.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
}

// ParseLevel maps a level name to a slog.Level. An empty name is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log: unknown level %q", s)
}
