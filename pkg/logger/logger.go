package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	shared *slog.Logger
)

// Init builds the process-wide logger from the observability config:
// "json" emits machine-readable records for log shippers, anything
// else falls back to the human-readable text handler. The level string
// accepts debug, info, warn and error; unknown values mean info.
func Init(format, level string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	mu.Lock()
	defer mu.Unlock()
	shared = slog.New(handler)
	slog.SetDefault(shared)
}

// ParseLevel maps a config level string onto slog's leveler.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggerWrapper returns the shared logger, initializing a debug-level
// text logger when Init has not run yet (tests, one-off commands).
func LoggerWrapper() *slog.Logger {
	mu.Lock()
	ready := shared != nil
	mu.Unlock()

	if !ready {
		Init("text", "debug")
	}
	return shared
}
