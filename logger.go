package scopecache

import "context"

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Provide an adapter around your logging stack
// (see log/zap, log/slog, log/logrus, log/apex). The context is the request's,
// so adapters can pick up request-scoped loggers or trace ids.
// If Logger is nil in Options, logging is disabled.
type Logger interface {
	Debug(ctx context.Context, msg string, f Fields)
	Info(ctx context.Context, msg string, f Fields)
	Warn(ctx context.Context, msg string, f Fields)
	Error(ctx context.Context, msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(context.Context, string, Fields) {}
func (NopLogger) Info(context.Context, string, Fields)  {}
func (NopLogger) Warn(context.Context, string, Fields)  {}
func (NopLogger) Error(context.Context, string, Fields) {}
