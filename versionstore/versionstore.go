// Package versionstore holds the named, monotonically increasing counters
// ("version scopes") that scopecache folds into cache keys.
//
// A scope that was never bumped reads as 0. Bump is a single atomic increment,
// so the first bump of a scope returns 1. Counters are never reset.
package versionstore

import "context"

// VersionStore abstracts where scope versions live.
// Use Redis to share versions across processes; Local is in-process only.
type VersionStore interface {
	// Get returns the current version; missing => 0. Reading never creates the scope.
	Get(ctx context.Context, scope string) (int64, error)
	// GetMany returns versions for many scopes; missing => 0.
	GetMany(ctx context.Context, scopes []string) (map[string]int64, error)
	// Bump atomically increments and returns the new version.
	Bump(ctx context.Context, scope string) (int64, error)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
