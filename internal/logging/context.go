package logging

import (
	"context"
	"log/slog"
	"strings"
)

type runIDKey struct{}

// ContextWithRunID stores the build run id on ctx.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDKey{}, strings.TrimSpace(runID))
}

// RunIDFromContext returns the run id stored by ContextWithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithRunID tags logger with run id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if strings.TrimSpace(runID) == "" {
		return logger
	}
	return logger.With(String(FieldRunID, runID))
}

// WithContext returns logger augmented with the run id carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return WithRunID(logger, id)
	}
	return logger
}
