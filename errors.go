package scopecache

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNoProvider = errors.New("scopecache: provider is required")
	ErrNoVersions = errors.New("scopecache: version store is required")
	ErrNoCodec    = errors.New("scopecache: codec is required")
)

// StoreError reports a failure of the value store, the version store or the
// codec. Handler errors are never wrapped in StoreError, so callers can tell
// the two failure domains apart with errors.As.
type StoreError struct {
	Op  string // "versions", "get", "decode", "encode", "set", "remove"
	Key string // cache key or scope list
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("scopecache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err came from the cache layer rather than the handler.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// InvalidateError is returned by the write path when the handler succeeded
// but invalidation did not fully apply. Every scope is attempted; Bumps holds
// the ones that failed.
type InvalidateError struct {
	Bumps  map[string]error // scope -> bump error
	Key    string           // legacy key, when DelErr is set
	DelErr error
}

func (e *InvalidateError) Error() string {
	switch {
	case len(e.Bumps) > 0:
		scopes := make([]string, 0, len(e.Bumps))
		for s := range e.Bumps {
			scopes = append(scopes, s)
		}
		sort.Strings(scopes)
		parts := make([]string, 0, len(scopes))
		for _, s := range scopes {
			parts = append(parts, fmt.Sprintf("%s: %v", s, e.Bumps[s]))
		}
		return fmt.Sprintf("scopecache: invalidate: %d version bump(s) failed: %s",
			len(scopes), strings.Join(parts, "; "))
	case e.DelErr != nil:
		return fmt.Sprintf("scopecache: invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return "scopecache: invalidate: unknown error"
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Bumps)+1)
	for _, err := range e.Bumps {
		errs = append(errs, err)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
