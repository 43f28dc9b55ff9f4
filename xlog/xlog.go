// Package xlog wires up the structured logger used throughout this
// repository. It generalizes the teacher's single-TTY debug log
// (github.com/badu/term/log) into a configurable logger for a long-running
// client or server process: callers choose the output writer, instead of
// always writing to a per-user temp file.
package xlog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logger  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	// Debug gates verbose protocol tracing (partial reads, retried frames,
	// dropped unknown codes). Off by default, the way mouse.Debug/key.Debug
	// gate the teacher's own terminal tracing.
	Debug = false
)

func init() {
	zerolog.TimestampFieldName = "t"
	zerolog.LevelFieldName = "l"
	zerolog.MessageFieldName = "m"
}

// Init points the package logger at w, replacing the stderr console writer.
// Call this once from a cmd/ composition root before starting any session
// or server.
func Init(w io.Writer, level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	zerolog.SetGlobalLevel(level)
	logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}

// Logger returns the current package-level logger. Safe for concurrent use.
func Logger() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := logger
	return &l
}

// Debugf logs a formatted debug message, gated by Debug, matching the
// teacher's if Debug { log.Printf(...) } idiom but through zerolog.
func Debugf(format string, args ...interface{}) {
	if !Debug {
		return
	}
	Logger().Debug().Msgf(format, args...)
}
