package scopecache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/scopecache/codec"
	"github.com/unkn0wn-root/scopecache/keys"
	pr "github.com/unkn0wn-root/scopecache/provider"
	vs "github.com/unkn0wn-root/scopecache/versionstore"
)

var errBoom = errors.New("boom")

type memEntry struct {
	v   []byte
	ttl time.Duration
	exp time.Time
}

// memProvider is an in-memory Provider with a settable clock and per-op failures.
type memProvider struct {
	mu  sync.Mutex
	m   map[string]memEntry
	now time.Time

	sets, gets, dels int

	getErr, setErr, delErr error
	reject                 bool
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider {
	return &memProvider{m: make(map[string]memEntry), now: time.Unix(1_700_000_000, 0)}
}

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !p.now.Before(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets++
	if p.setErr != nil {
		return false, p.setErr
	}
	if p.reject {
		return false, nil
	}
	p.m[key] = memEntry{v: value, ttl: ttl, exp: p.now.Add(ttl)}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dels++
	if p.delErr != nil {
		return p.delErr
	}
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(context.Context) error { return nil }

func (p *memProvider) advance(d time.Duration) {
	p.mu.Lock()
	p.now = p.now.Add(d)
	p.mu.Unlock()
}

func (p *memProvider) entry(key string) (memEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	return e, ok
}

func (p *memProvider) put(key string, raw []byte) {
	p.mu.Lock()
	p.m[key] = memEntry{v: raw, ttl: time.Hour, exp: p.now.Add(time.Hour)}
	p.mu.Unlock()
}

func (p *memProvider) counts() (sets, gets, dels int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sets, p.gets, p.dels
}

// faultyVersions wraps a Local store and fails selected operations.
type faultyVersions struct {
	*vs.Local

	mu      sync.Mutex
	getErr  error
	bumpErr map[string]error
}

func newFaultyVersions() *faultyVersions {
	return &faultyVersions{Local: vs.NewLocal(), bumpErr: make(map[string]error)}
}

func (f *faultyVersions) GetMany(ctx context.Context, scopes []string) (map[string]int64, error) {
	f.mu.Lock()
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Local.GetMany(ctx, scopes)
}

func (f *faultyVersions) Bump(ctx context.Context, scope string) (int64, error) {
	f.mu.Lock()
	err := f.bumpErr[scope]
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return f.Local.Bump(ctx, scope)
}

func (f *faultyVersions) failBump(scope string, err error) {
	f.mu.Lock()
	f.bumpErr[scope] = err
	f.mu.Unlock()
}

// recHooks records hook events.
type recHooks struct {
	NopHooks
	mu       sync.Mutex
	hits     []string
	misses   []string
	corrupt  []string
	rejected []string
	bumped   map[string]int64
	bypassed []string
	verrs    []string
}

func newRecHooks() *recHooks { return &recHooks{bumped: make(map[string]int64)} }

func (h *recHooks) Hit(k string)  { h.mu.Lock(); h.hits = append(h.hits, k); h.mu.Unlock() }
func (h *recHooks) Miss(k string) { h.mu.Lock(); h.misses = append(h.misses, k); h.mu.Unlock() }
func (h *recHooks) CorruptEntry(k string, _ error) {
	h.mu.Lock()
	h.corrupt = append(h.corrupt, k)
	h.mu.Unlock()
}
func (h *recHooks) ProviderSetRejected(k string) {
	h.mu.Lock()
	h.rejected = append(h.rejected, k)
	h.mu.Unlock()
}
func (h *recHooks) VersionBumped(s string, v int64) {
	h.mu.Lock()
	h.bumped[s] = v
	h.mu.Unlock()
}
func (h *recHooks) VersionError(op, s string, _ error) {
	h.mu.Lock()
	h.verrs = append(h.verrs, op+":"+s)
	h.mu.Unlock()
}
func (h *recHooks) StoreBypassed(op string, _ error) {
	h.mu.Lock()
	h.bypassed = append(h.bypassed, op)
	h.mu.Unlock()
}

type env struct {
	c     *Cache
	p     *memProvider
	v     *faultyVersions
	hooks *recHooks
}

func newEnv(t *testing.T, mutate func(*Options)) *env {
	t.Helper()
	e := &env{p: newMemProvider(), v: newFaultyVersions(), hooks: newRecHooks()}
	opts := Options{
		Provider: e.p,
		Versions: e.v,
		Hooks:    e.hooks,
		Now:      func() time.Time { return e.p.now },
	}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	e.c = c
	return e
}

// ---- request fixtures ----

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

type listQuery struct {
	Page, Size int
	Category   string
	TTL        time.Duration
}

func (q listQuery) BaseKey() string {
	return keys.BuildBaseKey("product:list", keys.NewSignature().
		Int("page", int64(q.Page)).
		Int("size", int64(q.Size)).
		Fold("category", q.Category))
}

func (q listQuery) VersionScopes() keys.Scopes {
	s := keys.NewScopes("product:list:ver")
	if q.Category != "" {
		s = append(s, "product:list:ver:category:"+q.Category)
	}
	return s
}

func (q listQuery) CacheTTL() time.Duration { return q.TTL }

type fixedQuery struct{ Key string }

func (q fixedQuery) CacheKey() string        { return q.Key }
func (q fixedQuery) CacheTTL() time.Duration { return 0 }

type createCmd struct{ Category string }

func (c createCmd) VersionScopesToBump() keys.Scopes {
	return keys.NewScopes("product:list:ver", "product:list:ver:category:"+c.Category)
}

type deleteCmd struct{ ID string }

func (c deleteCmd) InvalidateKey() string { return "product:detail:" + c.ID }

type bothCmd struct{ deleteCmd }

func (bothCmd) VersionScopesToBump() keys.Scopes { return keys.NewScopes("product:list:ver") }

type plainReq struct{}

func newReadThrough[Req any](t *testing.T, c *Cache) *ReadThrough[Req, page] {
	t.Helper()
	rt, err := NewReadThrough[Req, page](c, codec.JSON[page]{})
	if err != nil {
		t.Fatalf("NewReadThrough: %v", err)
	}
	return rt
}

func newInvalidate[Req any](t *testing.T, c *Cache) *Invalidate[Req, string] {
	t.Helper()
	w, err := NewInvalidate[Req, string](c)
	if err != nil {
		t.Fatalf("NewInvalidate: %v", err)
	}
	return w
}

// countingNext returns a Next that counts calls and returns resp, err.
func countingNext[Resp any](calls *int, resp Resp, err error) func(context.Context) (Resp, error) {
	return func(context.Context) (Resp, error) {
		*calls++
		return resp, err
	}
}
