package logrus

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/scopecache"
)

var _ scopecache.Logger = LogrusLogger{}

// LogrusLogger adapts a *logrus.Entry; the request context is attached to
// every entry for hooks that read it.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(ctx context.Context, msg string, f scopecache.Fields) {
	l.entry(ctx, f).Debug(msg)
}
func (l LogrusLogger) Info(ctx context.Context, msg string, f scopecache.Fields) {
	l.entry(ctx, f).Info(msg)
}
func (l LogrusLogger) Warn(ctx context.Context, msg string, f scopecache.Fields) {
	l.entry(ctx, f).Warn(msg)
}
func (l LogrusLogger) Error(ctx context.Context, msg string, f scopecache.Fields) {
	l.entry(ctx, f).Error(msg)
}

func (l LogrusLogger) entry(ctx context.Context, f scopecache.Fields) *logrus.Entry {
	e := l.E
	if e == nil {
		e = logrus.NewEntry(logrus.StandardLogger())
	}
	if ctx != nil {
		e = e.WithContext(ctx)
	}
	return e.WithFields(logrus.Fields(f))
}
