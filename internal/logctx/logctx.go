// Package logctx carries a zerolog logger through context.Context so that
// per-file and per-job fields follow a conversion down the call stack.
//
//	ctx = logctx.WithFile(ctx, path)
//	log := logctx.FromContext(ctx)
package logctx

import (
	"context"

	"github.com/eunmann/sas7bdat/pkg/logging"
	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the context logger, or the global logger when ctx
// carries none.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
			return logger
		}
	}
	return *logging.L()
}

// WithStr adds a string field to the context logger.
func WithStr(ctx context.Context, key, value string) context.Context {
	return WithLogger(ctx, FromContext(ctx).With().Str(key, value).Logger())
}

// WithFile adds the input file name.
func WithFile(ctx context.Context, name string) context.Context {
	return WithStr(ctx, "file", name)
}

// WithJob adds the job index within a batch.
func WithJob(ctx context.Context, index int) context.Context {
	return WithLogger(ctx, FromContext(ctx).With().Int("job", index).Logger())
}
