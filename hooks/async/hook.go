// Package asynchook moves hook delivery off the request path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := scopecache.New(scopecache.Options{
//	    Provider: provider,
//	    Versions: versions,
//	    Hooks:    hooks,
//	})
//
// Events are dropped, never blocked on, when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/scopecache"
)

type Hooks struct {
	inner   scopecache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ scopecache.Hooks = (*Hooks)(nil)

func New(inner scopecache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = scopecache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close stops accepting events and waits for queued ones to be delivered.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full
// or the hooks were closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	defer func() {
		// lost the race with Close: sending on a closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)                 { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)                { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) CorruptEntry(k string, err error) {
	h.try(func() { h.inner.CorruptEntry(k, err) })
}
func (h *Hooks) VersionBumped(scope string, v int64) {
	h.try(func() { h.inner.VersionBumped(scope, v) })
}
func (h *Hooks) VersionError(op, scope string, err error) {
	h.try(func() { h.inner.VersionError(op, scope, err) })
}
func (h *Hooks) StoreBypassed(op string, err error) {
	h.try(func() { h.inner.StoreBypassed(op, err) })
}
