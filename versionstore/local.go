package versionstore

import (
	"context"
	"sync"
)

// Local keeps scope versions in-process.
// Versions are lost on restart and not shared between replicas, so it only
// fits tests and single-process deployments.
type Local struct {
	mu       sync.RWMutex
	versions map[string]int64
}

var _ VersionStore = (*Local)(nil)

func NewLocal() *Local {
	return &Local{versions: make(map[string]int64)}
}

func (s *Local) Get(ctx context.Context, scope string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	v := s.versions[scope]
	s.mu.RUnlock()
	return v, nil
}

// GetMany takes the read lock once for all scopes.
func (s *Local) GetMany(ctx context.Context, scopes []string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(scopes))
	s.mu.RLock()
	for _, sc := range scopes {
		out[sc] = s.versions[sc] // 0 if missing
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Local) Bump(ctx context.Context, scope string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.versions[scope]++
	v := s.versions[scope]
	s.mu.Unlock()
	return v, nil
}

// Len returns the number of scopes bumped at least once.
func (s *Local) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.versions)
}

func (s *Local) Close(context.Context) error { return nil }
