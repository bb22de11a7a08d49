package scopecache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/unkn0wn-root/scopecache"

type instrumentation struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue

	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
	lookups  metric.Int64Counter
}

func newInstrumentation(tp trace.TracerProvider, mp metric.MeterProvider, ns string) *instrumentation {
	inst := &instrumentation{
		attrs: []attribute.KeyValue{attribute.String("scopecache.namespace", ns)},
	}
	if tp != nil {
		inst.tracer = tp.Tracer(instrumentationName)
	}
	if mp == nil {
		return inst
	}

	meter := mp.Meter(instrumentationName)
	inst.requests, _ = meter.Int64Counter(
		"scopecache.requests",
		metric.WithDescription("Total number of cache store operations"),
	)
	inst.errors, _ = meter.Int64Counter(
		"scopecache.errors",
		metric.WithDescription("Total number of failed cache store operations"),
	)
	inst.duration, _ = meter.Float64Histogram(
		"scopecache.duration.ms",
		metric.WithDescription("Cache store operation latency in milliseconds"),
	)
	inst.lookups, _ = meter.Int64Counter(
		"scopecache.lookups",
		metric.WithDescription("Cache lookups by result (hit, miss)"),
	)
	return inst
}

// start opens a span for op and returns a func that ends it and records metrics.
func (i *instrumentation) start(ctx context.Context, op string) (context.Context, func(error)) {
	if i == nil {
		return ctx, func(error) {}
	}

	start := time.Now()
	ctx, span := i.startSpan(ctx, op)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		i.recordMetrics(ctx, op, start, err)
	}
}

func (i *instrumentation) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	if i.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	attrs := append([]attribute.KeyValue{attribute.String("scopecache.op", op)}, i.attrs...)
	return i.tracer.Start(ctx, "scopecache."+op, trace.WithAttributes(attrs...))
}

func (i *instrumentation) recordMetrics(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(append([]attribute.KeyValue{attribute.String("scopecache.op", op)}, i.attrs...)...)
	if i.requests != nil {
		i.requests.Add(ctx, 1, attrs)
	}
	if err != nil && i.errors != nil {
		i.errors.Add(ctx, 1, attrs)
	}
	if i.duration != nil {
		i.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000.0, attrs)
	}
}

// lookup records the result of a read-path lookup and tags the active span.
func (i *instrumentation) lookup(ctx context.Context, hit bool) {
	if i == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("scopecache.result", result))
	if i.lookups != nil {
		i.lookups.Add(ctx, 1, metric.WithAttributes(append([]attribute.KeyValue{attribute.String("scopecache.result", result)}, i.attrs...)...))
	}
}
