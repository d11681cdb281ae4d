// Package logging provides structured logging for coursemap using zerolog.
//
// Stores never fail a user action because the device storage misbehaved;
// they log the fault here instead. Console output is used when stderr is a
// terminal, JSON otherwise.
//
//	log := logging.Default()
//	log.Warn().Err(err).Str("key", "@courses_db").Msg("storage write failed")
//
//	ctx := logging.WithCollection(ctx, "courses")
//	logging.FromContext(ctx).Debug().Msg("seeded")
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu            sync.RWMutex
	defaultLogger zerolog.Logger

	// Nop logger for discarding output.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = NewLoggerFromConfig(envConfig())
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := defaultLogger
	return &l
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
	log.Logger = logger
}

// New creates a new JSON logger with the given writer.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// NewConsole creates a new console logger for human-readable output.
func NewConsole() zerolog.Logger {
	return New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	})
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event {
	return Default().Debug()
}

// Info starts a new info level log event.
func Info() *zerolog.Event {
	return Default().Info()
}

// Warn starts a new warning level log event.
func Warn() *zerolog.Event {
	return Default().Warn()
}

// Error starts a new error level log event.
func Error() *zerolog.Event {
	return Default().Error()
}

// Err creates a new error log event with the given error.
func Err(err error) *zerolog.Event {
	return Default().Err(err)
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
