// Package log wraps a process-wide zerolog logger.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	logger     zerolog.Logger
	loggerLock sync.RWMutex
	sessionID  = uuid.NewString()
)

func init() {
	Setup(os.Stderr, "warn", true)
}

// Setup replaces the global logger. pretty selects the console writer,
// otherwise JSON lines are written to w.
func Setup(w io.Writer, level string, pretty bool) {
	if w == nil {
		w = io.Discard
	}
	output := w
	if pretty {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	loggerLock.Lock()
	logger = zerolog.New(output).
		Level(parseLogLevel(level)).
		With().
		Timestamp().
		Str("session", sessionID).
		Logger()
	loggerLock.Unlock()
}

// SetLevel sets the global log level at runtime
func SetLevel(levelStr string) {
	loggerLock.Lock()
	logger = logger.Level(parseLogLevel(levelStr))
	loggerLock.Unlock()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// Session returns the id attached to every log line of this process.
func Session() string { return sessionID }

// GetLogger returns a child logger tagged with the module name.
func GetLogger(module string) zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger.With().Str("module", module).Logger()
}

// Logger returns the underlying zerolog.Logger for integrations
func Logger() zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

func Debug() *zerolog.Event {
	l := Logger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}
