package scopecache

import (
	"reflect"
	"time"

	"github.com/unkn0wn-root/scopecache/keys"
)

// Cacheable is a request whose response is cached under a fixed key.
type Cacheable interface {
	CacheKey() string
	// CacheTTL overrides Options.DefaultTTL when non-zero.
	CacheTTL() time.Duration
}

// Expiring supplies a TTL override to a VersionedCacheable request.
type Expiring interface {
	CacheTTL() time.Duration
}

// VersionedCacheable is a request whose cache key is its base key plus the
// current versions of the scopes it depends on. It supersedes Cacheable.
type VersionedCacheable interface {
	BaseKey() string
	VersionScopes() keys.Scopes
}

// VersionBumping is a mutation that bumps scopes after its handler succeeds.
type VersionBumping interface {
	VersionScopesToBump() keys.Scopes
}

// Invalidating is a mutation that deletes one cached key after its handler
// succeeds. VersionBumping wins when a request implements both.
type Invalidating interface {
	InvalidateKey() string
}

type readMode uint8

const (
	readNone readMode = iota
	readPlain
	readVersioned
)

type writeMode uint8

const (
	writeNone writeMode = iota
	writeDelete
	writeBump
)

func readModeOf(req any) readMode {
	if _, ok := req.(VersionedCacheable); ok {
		return readVersioned
	}
	if _, ok := req.(Cacheable); ok {
		return readPlain
	}
	return readNone
}

func writeModeOf(req any) writeMode {
	if _, ok := req.(VersionBumping); ok {
		return writeBump
	}
	if _, ok := req.(Invalidating); ok {
		return writeDelete
	}
	return writeNone
}

// dynamic reports whether Req is an interface type, in which case the
// capabilities depend on the concrete value and are checked per request.
func dynamic[Req any]() bool {
	return reflect.TypeFor[Req]().Kind() == reflect.Interface
}

// resolveRead returns the read mode of Req, or ok=false when it has to be
// resolved per request.
func resolveRead[Req any]() (m readMode, ok bool) {
	if dynamic[Req]() {
		return readNone, false
	}
	var zero Req
	return readModeOf(zero), true
}

func resolveWrite[Req any]() (m writeMode, ok bool) {
	if dynamic[Req]() {
		return writeNone, false
	}
	var zero Req
	return writeModeOf(zero), true
}

// ttlOf returns the request's TTL override, 0 when it has none.
func ttlOf(req any) time.Duration {
	if e, ok := req.(Expiring); ok {
		return e.CacheTTL()
	}
	return 0
}
