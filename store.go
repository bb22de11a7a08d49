package scopecache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/scopecache/codec"
	"github.com/unkn0wn-root/scopecache/internal/wire"
)

// Store is the typed value store: it encodes values with a codec, frames them
// and writes them under the cache namespace. Safe for concurrent use.
type Store[V any] struct {
	c     *Cache
	codec codec.Codec[V]
	name  string
}

func NewStore[V any](c *Cache, cd codec.Codec[V]) (*Store[V], error) {
	if c == nil {
		return nil, ErrNoProvider
	}
	if cd == nil {
		return nil, ErrNoCodec
	}
	return &Store[V]{c: c, codec: cd, name: codec.NameOf(cd)}, nil
}

// Get returns (value, true, nil) on hit and (zero, false, nil) when the key
// is absent or expired. Bytes that don't unframe or decode are removed
// (best effort) and reported as a *StoreError with Op "decode".
func (s *Store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, _, ok, err := s.get(ctx, key)
	return v, ok, err
}

func (s *Store[V]) get(ctx context.Context, key string) (v V, age time.Duration, ok bool, err error) {
	ctx, done := s.c.inst.start(ctx, "get")
	defer func() { done(err) }()

	k := s.c.storageKey(key)
	raw, ok, err := s.c.provider.Get(ctx, k)
	if err != nil {
		return v, 0, false, &StoreError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return v, 0, false, nil
	}

	entry, err := wire.DecodeEntry(raw)
	if err == nil {
		v, err = s.codec.Decode(entry.Payload)
	}
	if err != nil {
		s.c.hooks.CorruptEntry(k, err)
		s.c.log.Warn(ctx, "corrupt cache entry", Fields{"key": k, "codec": s.name, "err": err})
		_ = s.c.provider.Del(ctx, k) // self-heal
		var zero V
		return zero, 0, false, &StoreError{Op: "decode", Key: key, Err: err}
	}
	return v, entry.Age(s.c.now()), true, nil
}

// Set writes value under key for ttl, overwriting any previous entry.
// A ttl <= 0 means the entry is already expired: the key is removed instead.
func (s *Store[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) (err error) {
	if ttl <= 0 {
		return s.Remove(ctx, key)
	}

	ctx, done := s.c.inst.start(ctx, "set")
	defer func() { done(err) }()

	payload, err := s.codec.Encode(value)
	if err != nil {
		return &StoreError{Op: "encode", Key: key, Err: err}
	}

	k := s.c.storageKey(key)
	b := wire.EncodeEntry(s.c.now(), payload)
	ok, err := s.c.provider.Set(ctx, k, b, s.c.computeSetCost(k, b), ttl)
	if err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	if !ok {
		s.c.hooks.ProviderSetRejected(k)
		s.c.log.Debug(ctx, "set rejected by provider (pressure)", Fields{"key": k})
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store[V]) Remove(ctx context.Context, key string) (err error) {
	ctx, done := s.c.inst.start(ctx, "remove")
	defer func() { done(err) }()

	if err = s.c.provider.Del(ctx, s.c.storageKey(key)); err != nil {
		return &StoreError{Op: "remove", Key: key, Err: err}
	}
	return nil
}
