package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alkime/dictator/internal/config"
	slogmulti "github.com/samber/slog-multi"
)

// FileName is the log file kept in the data directory.
const FileName = "dictator.log"

// Sink is a log destination. Files get JSON, terminals get text.
type Sink struct {
	W    io.Writer
	JSON bool
}

// Stdout is the default sink.
func Stdout() Sink {
	return Sink{W: os.Stdout, JSON: true}
}

// Stderr is a human-readable terminal sink.
func Stderr() Sink {
	return Sink{W: os.Stderr}
}

// OpenFile appends to the log file in dir.
func OpenFile(dir string) (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return f, nil
}

// Level picks the log level from the environment and LOG_LEVEL.
func Level(cfg *config.Config) slog.Level {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	return logLevel
}

// SetupLogger configures structured logging and installs it as the
// default logger. Without sinks it logs JSON to stdout.
func SetupLogger(cfg *config.Config, sinks ...Sink) *slog.Logger {
	if len(sinks) == 0 {
		sinks = []Sink{Stdout()}
	}

	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	opts := &slog.HandlerOptions{Level: Level(cfg)}

	handlers := make([]slog.Handler, 0, len(sinks))
	for _, s := range sinks {
		if s.JSON {
			handlers = append(handlers, slog.NewJSONHandler(s.W, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(s.W, opts))
		}
	}

	handler := handlers[0]
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
