// Package cli wires configuration into a running client for the mathlink
// command and its servers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/njchilds90/mathlink"
	"github.com/njchilds90/mathlink/cache"
	"github.com/njchilds90/mathlink/config"
	"github.com/njchilds90/mathlink/internal/logging"
	"github.com/njchilds90/mathlink/kernel"
)

// Runtime is a started client plus everything that must be released with it.
type Runtime struct {
	Client  *mathlink.Client
	Logger  *slog.Logger
	Metrics *kernel.Metrics

	closers []func() error
}

// Open starts a kernel as described by cfg. Metrics are registered on reg
// when it is non-nil. Cancelling ctx aborts a kernel that is still starting;
// after Open returns only Close stops it.
func Open(ctx context.Context, cfg config.Config, reg prometheus.Registerer, extra ...kernel.Option) (*Runtime, error) {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Logger: logger}
	if reg != nil {
		rt.Metrics = kernel.NewMetrics(reg)
	}

	var opts []mathlink.Option
	opts = append(opts, mathlink.WithLogger(logger), mathlink.WithHeads(cfg.Kernel.Heads...))

	c, err := rt.openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if c != nil {
		opts = append(opts, mathlink.WithCache(c))
	}

	kopts := []kernel.Option{
		kernel.WithProgram(cfg.Kernel.Program),
		kernel.WithArgs(cfg.Kernel.Args...),
		kernel.WithDir(cfg.Kernel.Dir),
		kernel.WithPTY(cfg.Kernel.PTY),
		kernel.WithLogger(logger),
		kernel.WithMetrics(rt.Metrics),
	}
	// ctx bounds startup only. Once the first prompt arrives the kernel lives
	// until Close, which asks it to Quit; a signal that cancels ctx must not
	// kill it while servers drain.
	kctx, kill := context.WithCancel(context.WithoutCancel(ctx))
	rt.closers = append(rt.closers, func() error { kill(); return nil })
	stop := context.AfterFunc(ctx, kill)
	client, err := mathlink.Start(kctx, append(kopts, extra...), opts...)
	stop()
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error starting kernel: %w", err)
	}
	rt.Client = client
	return rt, nil
}

func (rt *Runtime) openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Mode {
	case config.CacheMemory:
		return cache.NewMemory(cfg.Size)
	case config.CacheRedis:
		r := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cache.WithTTL(cfg.TTL))
		rt.closers = append(rt.closers, r.Close)
		if err := r.Ping(ctx); err != nil {
			// The kernel still works without the cache.
			rt.Logger.Warn("redis cache unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		return r, nil
	}
	return nil, nil
}

// Close stops the kernel and releases the cache.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Client != nil {
		errs = append(errs, rt.Client.Close())
	}
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.Format), nil
}
