package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	l := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &l)
}

// WithFields adds structured fields to the logger in the context.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	lc := FromContext(ctx).With()
	for k, v := range fields {
		lc = addField(lc, k, v)
	}
	l := lc.Logger()
	return WithLogger(ctx, &l)
}

// WithCollection tags log entries with a collection name.
func WithCollection(ctx context.Context, collection string) context.Context {
	return WithField(ctx, "collection", collection)
}

// WithOperation tags log entries with an operation name.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// WithUser tags log entries with the acting user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return WithField(ctx, "user_id", userID)
}
