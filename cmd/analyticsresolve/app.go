package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonwraymond/analyticsresolve/accounts"
	"github.com/jonwraymond/analyticsresolve/cache"
	"github.com/jonwraymond/analyticsresolve/config"
	"github.com/jonwraymond/analyticsresolve/health"
	"github.com/jonwraymond/analyticsresolve/observe"
	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/platform/google"
	"github.com/jonwraymond/analyticsresolve/resolve"
	"github.com/jonwraymond/analyticsresolve/secret"
	"github.com/jonwraymond/analyticsresolve/server"
)

// listerFactory builds the platform listers.
type listerFactory func(ctx context.Context, cfg google.Config, platforms ...platform.Platform) ([]platform.Lister, error)

// deps are the process-level collaborators, swapped out in tests.
type deps struct {
	loadConfig func() (config.Config, error)
	listers    listerFactory
	stdout     io.Writer
	stderr     io.Writer
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		listers:    google.NewListers,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// app holds the wired components.
type app struct {
	cfg     config.Config
	obs     observe.Observer
	logger  observe.Logger
	mw      *observe.Middleware
	index   *accounts.Index
	engine  *resolve.Engine
	health  *health.Aggregator
	secrets *secret.Resolver
}

func newApp(ctx context.Context, cfg config.Config, d deps) (*app, error) {
	obsCfg := cfg.ObserveConfig(version)
	obsCfg.Output = d.stderr
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	a := &app{cfg: cfg, obs: obs, logger: obs.Logger()}

	if err := a.wire(ctx, d); err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, d deps) error {
	metrics, err := observe.NewMetrics(a.obs.Meter())
	if err != nil {
		return fmt.Errorf("observe metrics: %w", err)
	}
	tracer := observe.NewTracer(a.obs.Tracer())
	a.mw = observe.NewMiddleware(tracer, metrics, a.logger)

	a.secrets = secret.NewResolver(true)
	if err := a.cfg.ResolveSecrets(ctx, a.secrets); err != nil {
		return err
	}

	platforms, err := a.cfg.PlatformList()
	if err != nil {
		return err
	}
	listers, err := d.listers(ctx, a.cfg.GoogleConfig(), platforms...)
	if err != nil {
		return fmt.Errorf("platform clients: %w", err)
	}

	store := cache.NewStore[*accounts.Snapshot](a.cfg.CachePolicy())
	a.index, err = accounts.New(store, listers,
		accounts.WithTTL(a.cfg.CacheTTL()),
		accounts.WithRetryPolicy(a.cfg.RetryPolicy()),
		accounts.WithAttemptTimeout(a.cfg.AttemptTimeout),
		accounts.WithDiscoveryTimeout(a.cfg.DiscoveryTimeout),
		accounts.WithRateLimit(a.cfg.DiscoveryRPS, a.cfg.DiscoveryBurst),
		accounts.WithLogger(a.logger),
		accounts.WithMetrics(metrics),
		accounts.WithTracer(tracer),
	)
	if err != nil {
		return err
	}

	a.engine = resolve.New(a.index, a.cfg.ResolveConfig(),
		resolve.WithLogger(a.logger),
		resolve.WithMetrics(metrics),
		resolve.WithTracer(tracer),
	)

	a.health = health.NewAggregator()
	a.index.RegisterHealth(a.health)

	a.logger.Info(ctx, "wired",
		observe.F("platforms", len(listers)),
		observe.F("cache_ttl", a.cfg.CacheTTL().String()),
		observe.F("cache_max", a.cfg.CacheMaxSize),
	)
	return nil
}

func (a *app) server() (*server.Server, error) {
	return server.New(server.Config{
		Engine:     a.engine,
		Index:      a.index,
		Health:     a.health,
		Middleware: a.mw,
		Name:       config.ServiceName,
		Version:    version,
		Metrics:    a.cfg.MetricsExporter == "prometheus",
	})
}

// Close flushes telemetry and releases secret providers.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.secrets != nil {
		errs = append(errs, a.secrets.Close())
	}
	if a.obs != nil {
		errs = append(errs, a.obs.Shutdown(context.WithoutCancel(ctx)))
	}
	return errors.Join(errs...)
}
