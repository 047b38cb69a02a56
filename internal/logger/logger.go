package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the process-wide structured logger. It discards output until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values read as info.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Init installs a JSON logger on stdout at the given level.
// Call it once at startup, after the configuration is loaded.
func Init(levelStr string) {
	InitTo(os.Stdout, levelStr)
}

// InitTo is Init with an explicit destination.
func InitTo(w io.Writer, levelStr string) {
	level, ok := ParseLevel(levelStr)
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)
	if !ok {
		L.Warn("invalid LOG_LEVEL, defaulting to info", "configured", levelStr)
	}
	L.Debug("logger initialized", "level", level.String())
}
