package scopecache

import (
	"context"
	"strings"
	"time"

	"github.com/unkn0wn-root/scopecache/codec"
	"github.com/unkn0wn-root/scopecache/keys"
	"github.com/unkn0wn-root/scopecache/pipeline"
)

// ReadThrough is the cache-aside behavior for queries. Requests that implement
// VersionedCacheable or Cacheable are served from the value store when a
// usable entry exists; otherwise the handler runs and its response is stored.
// Other requests pass straight through.
type ReadThrough[Req, Resp any] struct {
	c      *Cache
	store  *Store[Resp]
	mode   readMode
	static bool
}

var _ pipeline.Behavior[any, any] = (*ReadThrough[any, any])(nil)

// NewReadThrough builds the read-path behavior for Req. The capabilities of
// Req are resolved here, once; interface-typed Req is checked per request.
func NewReadThrough[Req, Resp any](c *Cache, cd codec.Codec[Resp]) (*ReadThrough[Req, Resp], error) {
	s, err := NewStore[Resp](c, cd)
	if err != nil {
		return nil, err
	}
	m, static := resolveRead[Req]()
	return &ReadThrough[Req, Resp]{c: c, store: s, mode: m, static: static}, nil
}

// Store returns the value store the behavior reads and writes.
func (r *ReadThrough[Req, Resp]) Store() *Store[Resp] { return r.store }

// Key returns the cache key req maps to right now, reading scope versions
// from the version store. ok is false when req is not cacheable.
func (r *ReadThrough[Req, Resp]) Key(ctx context.Context, req Req) (key string, ok bool, err error) {
	mode := r.modeOf(req)
	if mode == readNone {
		return "", false, nil
	}
	key, _, err = r.keyOf(ctx, req, mode)
	return key, err == nil, err
}

func (r *ReadThrough[Req, Resp]) Handle(ctx context.Context, req Req, next pipeline.Next[Resp]) (Resp, error) {
	var zero Resp

	mode := r.modeOf(req)
	if mode == readNone {
		return next(ctx)
	}

	key, ttl, err := r.keyOf(ctx, req, mode)
	if err != nil {
		if !r.c.failOpen {
			return zero, err
		}
		r.bypass(ctx, "versions", err)
		return next(ctx)
	}
	sk := r.c.storageKey(key)

	v, age, ok, err := r.store.get(ctx, key)
	switch {
	case err != nil:
		if !r.c.failOpen {
			return zero, err
		}
		r.bypass(ctx, "get", err)
	case ok && !isZero(v):
		r.c.hooks.Hit(sk)
		r.c.inst.lookup(ctx, true)
		r.c.log.Debug(ctx, "cache hit", Fields{"key": sk, "age_ms": age.Milliseconds()})
		return v, nil
	}

	r.c.hooks.Miss(sk)
	r.c.inst.lookup(ctx, false)
	r.c.log.Debug(ctx, "cache miss", Fields{"key": sk})

	resp, err := next(ctx)
	if err != nil {
		return resp, err
	}

	// a non-positive override means "no override": every miss stores once
	if ttl <= 0 {
		ttl = r.c.defaultTTL
	}
	if err := r.store.Set(ctx, key, resp, ttl); err != nil {
		if !r.c.failOpen {
			return resp, err
		}
		r.bypass(ctx, "set", err)
		return resp, nil
	}
	r.c.log.Debug(ctx, "cache stored", Fields{"key": sk, "ttl": ttl.String()})
	return resp, nil
}

func (r *ReadThrough[Req, Resp]) modeOf(req Req) readMode {
	if r.static {
		return r.mode
	}
	return readModeOf(req)
}

func (r *ReadThrough[Req, Resp]) keyOf(ctx context.Context, req Req, mode readMode) (string, time.Duration, error) {
	if mode == readVersioned {
		vc := any(req).(VersionedCacheable)
		versions, err := r.c.versionsOf(ctx, vc.VersionScopes())
		if err != nil {
			return "", 0, err
		}
		return keys.ComposeKey(vc.BaseKey(), versions), ttlOf(req), nil
	}
	pc := any(req).(Cacheable)
	return pc.CacheKey(), pc.CacheTTL(), nil
}

func (r *ReadThrough[Req, Resp]) bypass(ctx context.Context, op string, err error) {
	r.c.hooks.StoreBypassed(op, err)
	r.c.log.Warn(ctx, "cache bypassed (fail-open)", Fields{"op": op, "err": err})
}

// versionsOf reads the current version of every scope in one round-trip and
// returns them in scope order.
func (c *Cache) versionsOf(ctx context.Context, scopes keys.Scopes) (out []keys.ScopeVersion, err error) {
	if len(scopes) == 0 {
		return nil, nil
	}

	ctx, done := c.inst.start(ctx, "versions")
	defer func() { done(err) }()

	m, err := c.versions.GetMany(ctx, scopes)
	if err != nil {
		joined := strings.Join(scopes, ",")
		c.hooks.VersionError("get", joined, err)
		return nil, &StoreError{Op: "versions", Key: joined, Err: err}
	}

	out = make([]keys.ScopeVersion, len(scopes))
	for i, s := range scopes {
		out[i] = keys.ScopeVersion{Scope: s, Version: m[s]}
	}
	return out, nil
}
