package versionstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/scopecache/keys"
)

// ErrNilClient is returned by NewRedis when no client is supplied.
var ErrNilClient = errors.New("versionstore: nil redis client")

// Redis shares scope versions across processes and survives restarts.
// Each scope is a plain integer key "<namespace><scope>" advanced with INCR.
// Keys never expire: an expired counter would read as 0 again and could
// resurrect entries written under an old version.
type Redis struct {
	rdb         redis.UniversalClient
	ns          string // should match the cache namespace
	closeClient bool
}

var _ VersionStore = (*Redis)(nil)

// RedisConfig configures NewRedis.
type RedisConfig struct {
	Client    redis.UniversalClient
	Namespace string // "" => "app:"; a trailing ':' is added when missing
	// CloseClient makes Close close the client. Set it only when this store
	// exclusively owns the client.
	CloseClient bool
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, ns: keys.Namespace(cfg.Namespace), closeClient: cfg.CloseClient}, nil
}

func (s *Redis) key(scope string) string { return s.ns + scope }

// Get returns the current version.
// Missing keys are treated as version 0.
func (s *Redis) Get(ctx context.Context, scope string) (int64, error) {
	v, err := s.rdb.Get(ctx, s.key(scope)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis version get %q: %w", scope, err)
	}
	return v, nil
}

// GetMany pipelines one GET per scope. Pipelining instead of MGET keeps it
// working on Redis Cluster, where scopes hash to different slots.
func (s *Redis) GetMany(ctx context.Context, scopes []string) (map[string]int64, error) {
	out := make(map[string]int64, len(scopes))
	if len(scopes) == 0 {
		return out, nil
	}
	cmds := make([]*redis.StringCmd, len(scopes))
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, sc := range scopes {
			cmds[i] = p.Get(ctx, s.key(sc))
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis version get many: %w", err)
	}
	for i, cmd := range cmds {
		res, err := cmd.Result()
		if err == redis.Nil {
			out[scopes[i]] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis version get %q: %w", scopes[i], err)
		}
		v, err := strconv.ParseInt(res, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis version parse at %s: %w", scopes[i], err)
		}
		out[scopes[i]] = v
	}
	return out, nil
}

// Bump is a single INCR round-trip; a missing key starts from 0.
func (s *Redis) Bump(ctx context.Context, scope string) (int64, error) {
	v, err := s.rdb.Incr(ctx, s.key(scope)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis version bump %q: %w", scope, err)
	}
	return v, nil
}

// Close releases the client only when this store owns it.
func (s *Redis) Close(context.Context) error {
	if !s.closeClient {
		return nil
	}
	if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
