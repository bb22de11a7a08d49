package slog

import (
	"context"
	stdslog "log/slog"

	"github.com/unkn0wn-root/scopecache"
)

var _ scopecache.Logger = Logger{}

// Logger adapts a *slog.Logger. The request context is passed to the handler,
// so context-aware handlers can add trace ids.
type Logger struct{ L *stdslog.Logger }

func (s Logger) Debug(ctx context.Context, msg string, f scopecache.Fields) {
	s.log(ctx, stdslog.LevelDebug, msg, f)
}
func (s Logger) Info(ctx context.Context, msg string, f scopecache.Fields) {
	s.log(ctx, stdslog.LevelInfo, msg, f)
}
func (s Logger) Warn(ctx context.Context, msg string, f scopecache.Fields) {
	s.log(ctx, stdslog.LevelWarn, msg, f)
}
func (s Logger) Error(ctx context.Context, msg string, f scopecache.Fields) {
	s.log(ctx, stdslog.LevelError, msg, f)
}

func (s Logger) log(ctx context.Context, lvl stdslog.Level, msg string, f scopecache.Fields) {
	l := s.L
	if l == nil {
		l = stdslog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	l.LogAttrs(ctx, lvl, msg, attrs(f)...)
}

func attrs(f scopecache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	return out
}
