package scopecache

import (
	"context"

	"github.com/unkn0wn-root/scopecache/keys"
	"github.com/unkn0wn-root/scopecache/pipeline"
)

// Invalidate is the write-path behavior for commands. After the handler
// succeeds it bumps every scope of a VersionBumping request, or deletes the
// key of an Invalidating one. A failed handler invalidates nothing.
type Invalidate[Req, Resp any] struct {
	c      *Cache
	mode   writeMode
	static bool
}

var _ pipeline.Behavior[any, any] = (*Invalidate[any, any])(nil)

func NewInvalidate[Req, Resp any](c *Cache) (*Invalidate[Req, Resp], error) {
	if c == nil {
		return nil, ErrNoProvider
	}
	m, static := resolveWrite[Req]()
	return &Invalidate[Req, Resp]{c: c, mode: m, static: static}, nil
}

// Handle runs next and then invalidates. When invalidation fails the
// handler's response is still returned, together with an *InvalidateError
// (fail-closed) or nil (fail-open).
func (w *Invalidate[Req, Resp]) Handle(ctx context.Context, req Req, next pipeline.Next[Resp]) (Resp, error) {
	resp, err := next(ctx)
	if err != nil {
		return resp, err
	}

	mode := w.mode
	if !w.static {
		mode = writeModeOf(req)
	}

	var ierr *InvalidateError
	switch mode {
	case writeBump:
		ierr = w.c.bumpAll(ctx, any(req).(VersionBumping).VersionScopesToBump())
	case writeDelete:
		ierr = w.c.removeKey(ctx, any(req).(Invalidating).InvalidateKey())
	default:
		return resp, nil
	}

	if ierr == nil {
		return resp, nil
	}
	if w.c.failOpen {
		op := "bump"
		if ierr.DelErr != nil {
			op = "remove"
		}
		w.c.hooks.StoreBypassed(op, ierr)
		w.c.log.Warn(ctx, "invalidation failed (fail-open)", Fields{"err": ierr})
		return resp, nil
	}
	w.c.log.Error(ctx, "invalidation failed", Fields{"err": ierr})
	return resp, ierr
}

// bumpAll bumps scopes in order. Every scope is attempted; failures are
// collected rather than stopping at the first one.
func (c *Cache) bumpAll(ctx context.Context, scopes keys.Scopes) *InvalidateError {
	var failed map[string]error
	for _, s := range scopes {
		v, err := c.bump(ctx, s)
		if err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[s] = err
			continue
		}
		c.log.Debug(ctx, "version bumped", Fields{"scope": s, "version": v})
	}
	if failed != nil {
		return &InvalidateError{Bumps: failed}
	}
	return nil
}

func (c *Cache) bump(ctx context.Context, scope string) (v int64, err error) {
	ctx, done := c.inst.start(ctx, "bump")
	defer func() { done(err) }()

	v, err = c.versions.Bump(ctx, scope)
	if err != nil {
		c.hooks.VersionError("bump", scope, err)
		return 0, &StoreError{Op: "bump", Key: scope, Err: err}
	}
	c.hooks.VersionBumped(scope, v)
	return v, nil
}

func (c *Cache) removeKey(ctx context.Context, key string) *InvalidateError {
	ctx, done := c.inst.start(ctx, "remove")
	err := c.provider.Del(ctx, c.storageKey(key))
	done(err)
	if err != nil {
		return &InvalidateError{Key: key, DelErr: &StoreError{Op: "remove", Key: key, Err: err}}
	}
	c.log.Debug(ctx, "cache entry removed", Fields{"key": c.storageKey(key)})
	return nil
}
