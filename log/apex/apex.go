package apex

import (
	"context"

	"github.com/apex/log"
	"github.com/unkn0wn-root/scopecache"
)

var _ scopecache.Logger = Logger{}

// Logger adapts an apex/log Interface. A nil L logs through the package-level
// apex logger (log.Log).
type Logger struct{ L log.Interface }

func (a Logger) Debug(_ context.Context, msg string, f scopecache.Fields) {
	a.entry(f).Debug(msg)
}
func (a Logger) Info(_ context.Context, msg string, f scopecache.Fields) {
	a.entry(f).Info(msg)
}
func (a Logger) Warn(_ context.Context, msg string, f scopecache.Fields) {
	a.entry(f).Warn(msg)
}
func (a Logger) Error(_ context.Context, msg string, f scopecache.Fields) {
	a.entry(f).Error(msg)
}

func (a Logger) entry(f scopecache.Fields) *log.Entry {
	l := a.L
	if l == nil {
		l = log.Log
	}
	return l.WithFields(log.Fields(f))
}
