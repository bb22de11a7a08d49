package scopecache

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	pr "github.com/unkn0wn-root/scopecache/provider"
	vs "github.com/unkn0wn-root/scopecache/versionstore"
)

// SetCostFunc computes the cost passed to Provider.Set for a framed value.
type SetCostFunc func(storageKey string, raw []byte) int64

// Options tune the shared cache. Provider and Versions are required; others
// have sensible defaults.
type Options struct {
	// Required
	Provider pr.Provider     // value store backend
	Versions vs.VersionStore // scope counters; inject one per fleet, never a global

	Namespace      string        // key prefix; "" => "app:", always normalized to end with ':'
	DefaultTTL     time.Duration // TTL when a request has no override; 0 => 1h
	Logger         Logger        // nil => NopLogger
	Hooks          Hooks         // nil => NopHooks
	ComputeSetCost SetCostFunc   // nil => len(raw)

	// FailOpen serves requests from their handlers when a store fails instead
	// of failing the request. Default false: a store outage surfaces as an error.
	FailOpen bool

	// OpenTelemetry; nil disables spans / metrics respectively.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	// Now is the clock used to stamp entries (tests); nil => time.Now.
	Now func() time.Time
}

// Cache is the shared state behind every Store, ReadThrough and Invalidate:
// the namespace, both stores and the ambient stack. Create one per process
// and share it.
type Cache struct {
	ns             string
	provider       pr.Provider
	versions       vs.VersionStore
	log            Logger
	hooks          Hooks
	defaultTTL     time.Duration
	failOpen       bool
	computeSetCost SetCostFunc
	now            func() time.Time
	inst           *instrumentation
}

func New(opts Options) (*Cache, error) {
	if opts.Provider == nil {
		return nil, ErrNoProvider
	}
	if opts.Versions == nil {
		return nil, ErrNoVersions
	}

	c := &Cache{
		ns:       NormalizeNamespace(opts.Namespace),
		provider: opts.Provider,
		versions: opts.Versions,
		failOpen: opts.FailOpen,
	}

	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, DefaultTTL)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(_ string, raw []byte) int64 { return int64(len(raw)) }
	}
	if opts.Now != nil {
		c.now = opts.Now
	} else {
		c.now = time.Now
	}

	c.inst = newInstrumentation(opts.TracerProvider, opts.MeterProvider, c.ns)
	return c, nil
}

// Namespace returns the normalized key prefix.
func (c *Cache) Namespace() string { return c.ns }

// DefaultTTL returns the TTL used when a request has no override.
func (c *Cache) DefaultTTL() time.Duration { return c.defaultTTL }

// Versions exposes the version store, e.g. for admin endpoints.
func (c *Cache) Versions() vs.VersionStore { return c.versions }

// Close closes the version store and the provider, in that order.
func (c *Cache) Close(ctx context.Context) error {
	return errors.Join(c.versions.Close(ctx), c.provider.Close(ctx))
}

func (c *Cache) storageKey(key string) string { return c.ns + key }
