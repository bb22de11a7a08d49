package zap

import (
	"context"

	"github.com/unkn0wn-root/scopecache"
	"go.uber.org/zap"
)

type ctxKey int

const loggerKey ctxKey = iota

var _ scopecache.Logger = ZapLogger{}

// ZapLogger adapts a *zap.Logger. A logger attached to the request context
// with WithLogger takes precedence over L, so cache logs carry request fields.
type ZapLogger struct{ L *zap.Logger }

// WithLogger attaches a request-scoped logger to ctx.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or nil.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(loggerKey).(*zap.Logger)
	return l
}

func (z ZapLogger) Debug(ctx context.Context, msg string, f scopecache.Fields) {
	z.logger(ctx).Debug(msg, zf(f)...)
}
func (z ZapLogger) Info(ctx context.Context, msg string, f scopecache.Fields) {
	z.logger(ctx).Info(msg, zf(f)...)
}
func (z ZapLogger) Warn(ctx context.Context, msg string, f scopecache.Fields) {
	z.logger(ctx).Warn(msg, zf(f)...)
}
func (z ZapLogger) Error(ctx context.Context, msg string, f scopecache.Fields) {
	z.logger(ctx).Error(msg, zf(f)...)
}

func (z ZapLogger) logger(ctx context.Context) *zap.Logger {
	if l := FromContext(ctx); l != nil {
		return l
	}
	if z.L != nil {
		return z.L
	}
	return zap.NewNop()
}

func zf(f scopecache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
