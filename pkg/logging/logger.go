// Package logging wraps zerolog with the small surface the rest of the
// daemon needs: leveled calls taking loose key/value pairs, plus a settable
// global for packages that cannot carry a logger handle through every call.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps a configured zerolog.Logger.
type Logger struct {
	logger zerolog.Logger
}

// Init builds a Logger from a level name, a format ("json" or "text"), and
// an output target ("stdout", "stderr", or a file path). It also installs
// the result as zerolog's own global logger.
func Init(level, format, output string) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	writer := os.Stdout
	switch output {
	case "", "stdout":
	case "stderr":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		return newLogger(file, format), nil
	}
	return newLogger(writer, format), nil
}

func newLogger(w *os.File, format string) *Logger {
	var logger zerolog.Logger
	if strings.ToLower(format) == "text" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}
	log.Logger = logger
	return &Logger{logger: logger}
}

// With returns a child logger carrying the given key/value pairs on every
// subsequent call, used by daemon components to stamp their component name
// once at construction (e.g. logger.With("component", "scheduler")).
func (l *Logger) With(fields ...interface{}) *Logger {
	ctx := l.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &Logger{logger: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...interface{}) { emit(l.logger.Debug(), msg, fields...) }
func (l *Logger) Info(msg string, fields ...interface{})  { emit(l.logger.Info(), msg, fields...) }
func (l *Logger) Warn(msg string, fields ...interface{})  { emit(l.logger.Warn(), msg, fields...) }
func (l *Logger) Error(msg string, fields ...interface{}) { emit(l.logger.Error(), msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...interface{}) { emit(l.logger.Fatal(), msg, fields...) }

// ZerologLogger returns the underlying zerolog.Logger.
func (l *Logger) ZerologLogger() zerolog.Logger {
	return l.logger
}

func emit(event *zerolog.Event, msg string, fields ...interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		event.Interface(key, fields[i+1])
	}
	event.Msg(msg)
}

var global *Logger

// SetGlobal installs l as the package-level logger used by the free
// functions below.
func SetGlobal(l *Logger) { global = l }

func Debug(msg string, fields ...interface{}) {
	if global != nil {
		global.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...interface{}) {
	if global != nil {
		global.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...interface{}) {
	if global != nil {
		global.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...interface{}) {
	if global != nil {
		global.Error(msg, fields...)
	}
}

func Fatal(msg string, fields ...interface{}) {
	if global != nil {
		global.Fatal(msg, fields...)
	}
}
