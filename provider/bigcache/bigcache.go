package bigcache

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/scopecache/provider"
)

// Provider is an in-process, sharded value store.
//
// BigCache only knows one global LifeWindow, so each value is stored behind an
// 8-byte expiry deadline (unix nanos) and checked on Get. Callers still get
// back exactly the bytes they stored. Entries never outlive LifeWindow.
type Provider struct {
	c   *bc.BigCache
	now func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration // upper bound for any entry; should be >= the longest TTL used
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache: LifeWindow must be > 0")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(b) < 8 {
		_ = p.c.Delete(key)
		return nil, false, nil
	}
	deadline := int64(binary.BigEndian.Uint64(b[:8]))
	if deadline != 0 && p.now().UnixNano() >= deadline {
		_ = p.c.Delete(key)
		return nil, false, nil
	}
	return b[8:], true, nil
}

// Set stores value until now+ttl; ttl <= 0 keeps it for the whole LifeWindow.
func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var deadline int64
	if ttl > 0 {
		deadline = p.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(deadline))
	copy(buf[8:], value)
	if err := p.c.Set(key, buf); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
