package scopecache

import (
	"reflect"
	"time"

	"github.com/unkn0wn-root/scopecache/keys"
)

const (
	// DefaultNamespace prefixes every key when Options.Namespace is empty.
	DefaultNamespace = keys.DefaultNamespace
	// DefaultTTL applies when a cacheable request has no TTL override.
	DefaultTTL = time.Hour
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// NormalizeNamespace trims ns, falls back to DefaultNamespace and makes sure
// it ends with ':'.
func NormalizeNamespace(ns string) string { return keys.Namespace(ns) }

// isZero reports whether v is its type's zero value. Cached zero values are
// treated as misses.
func isZero[V any](v V) bool {
	rv := reflect.ValueOf(&v).Elem()
	return rv.IsZero()
}
