// Package config loads scopecache settings from the environment.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/scopecache"
	"github.com/unkn0wn-root/scopecache/codec"
)

var (
	ErrMissingHost = errors.New("config: redis host is required")
	ErrInvalidPort = errors.New("config: redis port must be between 1 and 65535")
)

// Config holds the cache connection and policy settings.
type Config struct {
	RedisHost     string `env:"SCOPECACHE_REDIS_HOST"`
	RedisPort     int    `env:"SCOPECACHE_REDIS_PORT"     envDefault:"6379"`
	RedisPassword string `env:"SCOPECACHE_REDIS_PASSWORD"`
	RedisDB       int    `env:"SCOPECACHE_REDIS_DB"       envDefault:"0"`
	RedisTLS      bool   `env:"SCOPECACHE_REDIS_TLS"`

	Prefix     string        `env:"SCOPECACHE_PREFIX"      envDefault:"app:"`
	DefaultTTL time.Duration `env:"SCOPECACHE_DEFAULT_TTL" envDefault:"1h"`
	FailOpen   bool          `env:"SCOPECACHE_FAIL_OPEN"`
	Codec      string        `env:"SCOPECACHE_CODEC"       envDefault:"json"`
}

// Load parses the environment. It does not validate the Redis settings, so
// in-process setups can load a Config without a Redis host.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Prefix = scopecache.NormalizeNamespace(cfg.Prefix)
	if cfg.DefaultTTL < 0 {
		return Config{}, fmt.Errorf("config: default ttl must not be negative, got %s", cfg.DefaultTTL)
	}
	if _, err := codec.ForName[any](cfg.Codec); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks the Redis connection settings.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.RedisHost) == "" {
		errs = append(errs, ErrMissingHost)
	}
	if c.RedisPort < 1 || c.RedisPort > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("config: redis db must not be negative, got %d", c.RedisDB))
	}
	return errors.Join(errs...)
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(strings.TrimSpace(c.RedisHost), strconv.Itoa(c.RedisPort))
}

// RedisOptions builds go-redis options, with TLS when RedisTLS is set.
func (c Config) RedisOptions() *redis.UniversalOptions {
	opts := &redis.UniversalOptions{
		Addrs:    []string{c.Addr()},
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
	if c.RedisTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: strings.TrimSpace(c.RedisHost),
		}
	}
	return opts
}

// NewClient validates the settings and returns a client for them.
func (c Config) NewClient() (redis.UniversalClient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return redis.NewUniversalClient(c.RedisOptions()), nil
}

// CacheOptions fills the policy fields of scopecache.Options; the caller
// supplies the stores and the ambient stack.
func (c Config) CacheOptions() scopecache.Options {
	return scopecache.Options{
		Namespace:  c.Prefix,
		DefaultTTL: c.DefaultTTL,
		FailOpen:   c.FailOpen,
	}
}
