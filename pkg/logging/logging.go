// Package logging provides the process-wide zerolog logger for the
// sas7bdat reader, converter and CLI.
package logging

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger atomic.Pointer[zerolog.Logger]
	pretty atomic.Bool
)

func init() {
	Configure(Options{})
}

// Options configures the process logger.
type Options struct {
	// Debug lowers the level to Debug. The default level is Info.
	Debug bool
	// Human writes console lines instead of JSON and adds human-readable
	// companions to byte, count and duration fields.
	Human bool
	// Out receives log lines. Nil means os.Stderr.
	Out io.Writer
}

// Init configures the logger for the CLI flags --debug and --human.
func Init(debug bool, human bool) {
	Configure(Options{Debug: debug, Human: human})
}

// Configure replaces the process logger.
func Configure(o Options) {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	pretty.Store(o.Human)

	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	if o.Human {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(out).With().Timestamp().Logger()
	logger.Store(&l)
}

// IsPrettyMode reports whether human-readable output is on.
func IsPrettyMode() bool {
	return pretty.Load()
}

// L returns the base logger.
func L() *zerolog.Logger {
	return logger.Load()
}

// WithPhase returns a logger with the phase field set.
func WithPhase(phase string) zerolog.Logger {
	return L().With().Str("phase", phase).Logger()
}

// SetLogger overrides the process logger, mostly for tests.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}
