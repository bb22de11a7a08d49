package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Logging logs every dispatch of a request type with its duration and outcome.
// A nil logger disables it.
func Logging[Req, Resp any](l *zap.Logger, name string) Behavior[Req, Resp] {
	if l == nil {
		l = zap.NewNop()
	}
	l = l.With(zap.String("request", name))
	return BehaviorFunc[Req, Resp](func(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
		start := time.Now()
		resp, err := next(ctx)
		latencyMs := float64(time.Since(start).Microseconds()) / 1000.0
		if err != nil {
			l.Warn("request_failed", zap.Float64("latency_ms", latencyMs), zap.Error(err))
			return resp, err
		}
		l.Debug("request_handled", zap.Float64("latency_ms", latencyMs))
		return resp, nil
	})
}
