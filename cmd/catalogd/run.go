package main

import (
	"context"
	"errors"
	"fmt"
	stdslog "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	apexjson "github.com/apex/log/handlers/json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/scopecache"
	"github.com/unkn0wn-root/scopecache/config"
	asynchook "github.com/unkn0wn-root/scopecache/hooks/async"
	promhooks "github.com/unkn0wn-root/scopecache/hooks/prometheus"
	"github.com/unkn0wn-root/scopecache/internal/catalog"
	"github.com/unkn0wn-root/scopecache/internal/httpapi"
	logapex "github.com/unkn0wn-root/scopecache/log/apex"
	loglogrus "github.com/unkn0wn-root/scopecache/log/logrus"
	logslog "github.com/unkn0wn-root/scopecache/log/slog"
	logzap "github.com/unkn0wn-root/scopecache/log/zap"
	pr "github.com/unkn0wn-root/scopecache/provider"
	"github.com/unkn0wn-root/scopecache/provider/bigcache"
	"github.com/unkn0wn-root/scopecache/provider/redis"
	"github.com/unkn0wn-root/scopecache/provider/ristretto"
	"github.com/unkn0wn-root/scopecache/sloghooks"
	vs "github.com/unkn0wn-root/scopecache/versionstore"
)

type options struct {
	Addr            string
	Backend         string
	MemoryProvider  string
	CacheLogger     string
	HookQueue       int
	Sample          uint64
	ShutdownTimeout time.Duration
}

func run(ctx context.Context, opts options) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Info("loaded config",
		zap.String("backend", opts.Backend),
		zap.String("prefix", cfg.Prefix),
		zap.Duration("default_ttl", cfg.DefaultTTL),
		zap.Bool("fail_open", cfg.FailOpen),
		zap.String("codec", cfg.Codec),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider, versions, err := openStores(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}

	prom, err := promhooks.New(reg)
	if err != nil {
		_ = provider.Close(ctx)
		_ = versions.Close(ctx)
		return fmt.Errorf("metrics: %w", err)
	}
	eventLog := stdslog.New(stdslog.NewJSONHandler(os.Stderr, nil)).With("component", "scopecache")
	hooks := asynchook.New(scopecache.NewMultiHooks(
		prom,
		sloghooks.New(eventLog, sloghooks.Options{HitEvery: opts.Sample, MissEvery: opts.Sample}),
	), 1, opts.HookQueue)
	defer hooks.Close()

	cacheOpts := cfg.CacheOptions()
	cacheOpts.Provider = provider
	cacheOpts.Versions = versions
	cacheOpts.Logger = cacheLogger(opts.CacheLogger, logger)
	cacheOpts.Hooks = hooks
	cacheOpts.TracerProvider = otel.GetTracerProvider()
	cacheOpts.MeterProvider = otel.GetMeterProvider()

	cache, err := scopecache.New(cacheOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(context.Background()); err != nil {
			logger.Warn("cache close", zap.Error(err))
		}
	}()

	svc, err := catalog.NewService(cache, catalog.NewMemory(), logger, cfg.Codec)
	if err != nil {
		return err
	}
	router, err := httpapi.NewRouter(httpapi.Config{Catalog: svc, Logger: logger, Registry: reg})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting catalogd", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("server shutdown complete", zap.Uint64("hook_events_dropped", hooks.Dropped()))
	return nil
}

// openStores returns the value store and the version store for the backend.
// With redis both share one client, owned by the provider.
func openStores(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) (pr.Provider, vs.VersionStore, error) {
	switch opts.Backend {
	case "redis":
		client, err := cfg.NewClient()
		if err != nil {
			return nil, nil, err
		}
		p, err := redis.New(redis.Config{Client: client, CloseClient: true})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			_ = p.Close(ctx)
			logger.Error("redis connection failed", zap.String("addr", cfg.Addr()), zap.Error(err))
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("redis connection established", zap.String("addr", cfg.Addr()))

		v, err := vs.NewRedis(vs.RedisConfig{Client: client, Namespace: cfg.Prefix})
		if err != nil {
			_ = p.Close(ctx)
			return nil, nil, err
		}
		return p, v, nil

	case "memory":
		var (
			p   pr.Provider
			err error
		)
		if opts.MemoryProvider == "bigcache" {
			p, err = bigcache.New(ctx, bigcache.Config{
				LifeWindow:         max(cfg.DefaultTTL, time.Hour),
				CleanWindow:        time.Minute,
				MaxEntriesInWindow: 100_000,
				MaxEntrySize:       4096,
				HardMaxCacheSizeMB: 256,
			})
		} else {
			p, err = ristretto.New(ristretto.Config{
				NumCounters: 1_000_000,
				MaxCost:     256 << 20,
				BufferItems: 64,
				Metrics:     true,
			})
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s provider: %w", opts.MemoryProvider, err)
		}
		logger.Info("in-process cache", zap.String("provider", opts.MemoryProvider))
		return p, vs.NewLocal(), nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", opts.Backend)
}

func cacheLogger(name string, base *zap.Logger) scopecache.Logger {
	switch name {
	case "slog":
		return logslog.Logger{L: stdslog.New(stdslog.NewJSONHandler(os.Stderr, nil))}
	case "logrus":
		l := logrus.New()
		l.SetFormatter(&logrus.JSONFormatter{})
		return loglogrus.LogrusLogger{E: logrus.NewEntry(l)}
	case "apex":
		return logapex.Logger{L: &log.Logger{Handler: apexjson.New(os.Stderr), Level: log.InfoLevel}}
	default:
		return logzap.ZapLogger{L: base.Named("scopecache")}
	}
}
