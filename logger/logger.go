// Package logger builds the zerolog logger the servers and CLI share.
// Everything downstream takes a zerolog.Logger value, so level and
// format are decided once, here, from config.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Config struct {
	// Level below which events are dropped. Unknown values fall back
	// to info.
	Level Level
	// Pretty switches to the human console writer for development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New builds a logger with timestamps attached.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = cfg.Output
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	return zerolog.New(writer).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
