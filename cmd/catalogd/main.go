// Command catalogd serves the product catalog through scopecache.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "catalogd",
		Usage: "product catalog API with versioned read-through caching",
		Description: "Connection and cache policy settings come from SCOPECACHE_* environment " +
			"variables; flags select the backend and the ambient stack.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "HTTP listen address",
				Value:   ":8080",
				Sources: cli.EnvVars("CATALOGD_ADDR"),
			},
			&cli.StringFlag{
				Name:      "backend",
				Usage:     "cache backend: redis (shared) or memory (single process)",
				Value:     "redis",
				Validator: oneOf("redis", "memory"),
			},
			&cli.StringFlag{
				Name:      "memory-provider",
				Usage:     "value store for --backend=memory: ristretto or bigcache",
				Value:     "ristretto",
				Validator: oneOf("ristretto", "bigcache"),
			},
			&cli.StringFlag{
				Name:      "cache-logger",
				Usage:     "logger for cache events: zap, slog, logrus or apex",
				Value:     "zap",
				Validator: oneOf("zap", "slog", "logrus", "apex"),
			},
			&cli.IntFlag{
				Name:  "hook-queue",
				Usage: "async hook queue length; events are dropped when full",
				Value: 4096,
			},
			&cli.IntFlag{
				Name:  "sample",
				Usage: "log one in N cache hits and misses",
				Value: 100,
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "grace period for in-flight requests",
				Value: 10 * time.Second,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, options{
				Addr:            cmd.String("addr"),
				Backend:         cmd.String("backend"),
				MemoryProvider:  cmd.String("memory-provider"),
				CacheLogger:     cmd.String("cache-logger"),
				HookQueue:       int(cmd.Int("hook-queue")),
				Sample:          uint64(max(cmd.Int("sample"), 1)),
				ShutdownTimeout: cmd.Duration("shutdown-timeout"),
			})
		},
	}
}

func oneOf(allowed ...string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v, got %q", allowed, v)
	}
}
