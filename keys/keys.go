// Package keys builds deterministic cache keys for scopecache.
//
// A full key has two parts:
//
//	<tag>:<hash>                       - base key, derived only from request parameters
//	:<scope>-v<version>[:<scope>-v<n>] - version suffix, one token per scope
//	:v0                                - version suffix when the request has no scopes
//
// Base keys are hashed with xxhash64, which is seedless, so the same parameters
// produce the same key on every process in the fleet.
package keys

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// NoScopes is the version suffix of a request that depends on no scopes.
	NoScopes = "v0"

	// DefaultNamespace prefixes every stored key and version counter when no
	// namespace is configured.
	DefaultNamespace = "app:"

	// PlaceholderScope replaces blank scope names.
	PlaceholderScope = "scope"

	sep = ":"
)

// Scopes is an ordered list of version scope names.
// Order is part of the key: build it the same way on every call.
type Scopes []string

// NewScopes returns the given names as Scopes, preserving order.
func NewScopes(names ...string) Scopes {
	return Scopes(names)
}

// ScopeVersion pairs a scope with the counter value observed for it.
type ScopeVersion struct {
	Scope   string
	Version int64
}

// BuildBaseKey hashes the signature and prefixes it with tag,
// e.g. "product:list:9f86d081884c7d65".
func BuildBaseKey(tag string, sig *Signature) string {
	return tag + sep + Hash(sig.String())
}

// Hash returns the 16 lower-case hex chars of xxhash64(s).
func Hash(s string) string {
	h := strconv.FormatUint(xxhash.Sum64String(s), 16)
	if len(h) < 16 {
		h = strings.Repeat("0", 16-len(h)) + h
	}
	return h
}

// ComposeKey appends the version suffix to base. Versions are joined in the
// order given.
func ComposeKey(base string, versions []ScopeVersion) string {
	if len(versions) == 0 {
		return base + sep + NoScopes
	}
	var b strings.Builder
	b.Grow(len(base) + len(versions)*24)
	b.WriteString(base)
	for _, sv := range versions {
		b.WriteString(sep)
		b.WriteString(SanitizeScope(sv.Scope))
		b.WriteString("-v")
		b.WriteString(strconv.FormatInt(sv.Version, 10))
	}
	return b.String()
}

// SanitizeScope makes a scope name safe to embed in a key: ':' becomes '_'
// and a blank name becomes PlaceholderScope.
func SanitizeScope(scope string) string {
	if strings.TrimSpace(scope) == "" {
		return PlaceholderScope
	}
	return strings.ReplaceAll(scope, sep, "_")
}

// Namespace trims ns, falls back to DefaultNamespace and makes sure it ends
// with ':'. The value store and the version store both use it, so a caller
// that configures only one of them still gets matching prefixes.
func Namespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return DefaultNamespace
	}
	if !strings.HasSuffix(ns, sep) {
		ns += sep
	}
	return ns
}
