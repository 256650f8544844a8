package logx

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds the process logger. Text output is colored with tint,
// anything else falls back to JSON lines.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	lvl := ParseLevel(level)

	if strings.EqualFold(format, FormatText) {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.DateTime,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
}

func ParseLevel(level string) slog.Level {
	var lvl slog.Level

	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}

	return lvl
}
