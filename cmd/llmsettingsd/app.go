package main

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"llmsettings/internal/catalog"
	"llmsettings/internal/config"
	"llmsettings/internal/modellist"
	"llmsettings/internal/persist"
	"llmsettings/internal/scheduler"
	"llmsettings/internal/settings"
	"llmsettings/pkg/types"
)

// persister is a settings.Persister that can also hydrate the initial tree.
type persister interface {
	settings.Persister
	Load(ctx context.Context) (types.Settings, error)
}

// app wires the store, its persistence, the catalog router, the model list
// cache and the optional refresh schedule.
type app struct {
	log     zerolog.Logger
	persist persister
	store   *settings.Store
	router  *catalog.Router
	cache   *modellist.Cache
	sched   *scheduler.Scheduler
	closers []io.Closer
	ready   atomic.Bool
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{log: logger}
	p, err := openPersister(ctx, cfg, &logger)
	if err != nil {
		return nil, err
	}
	a.persist = p
	if c, ok := p.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	initial, err := p.Load(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load settings: %w", err)
	}
	a.store = settings.NewWithConfig(settings.StoreConfig{
		Initial:   initial,
		Persister: p,
		Publisher: logPublisher{log: logger},
		Logger:    &logger,
	})

	listers, closers, err := buildListers(cfg, &logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closers...)
	a.router = catalog.NewRouter(listers)

	timeout, _ := cfg.FetchTimeoutDuration()
	a.cache = modellist.New(modellist.Config{
		Client:       a.router,
		Writer:       a.store,
		FetchTimeout: timeout,
		Logger:       &logger,
	})

	if cfg.RefreshCron != "" {
		refresh, _ := cfg.RefreshTimeoutDuration()
		a.sched, err = scheduler.New(scheduler.Config{
			Spec:      cfg.RefreshCron,
			Cache:     a.cache,
			Settings:  a.store,
			Providers: a.router.Providers(),
			Timeout:   refresh,
			Logger:    &logger,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	a.ready.Store(true)
	return a, nil
}

// openPersister selects the backend named by cfg.Store.
func openPersister(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (persister, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return persist.OpenSQLite(ctx, cfg.Store.Path, logger)
	case config.DriverFile, "":
		return persist.NewFile(cfg.Store.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// buildListers creates one catalog client per configured provider.
func buildListers(cfg config.Config, logger *zerolog.Logger) (map[types.ProviderKey]catalog.Lister, []io.Closer, error) {
	listers := make(map[types.ProviderKey]catalog.Lister, len(cfg.Providers))
	var closers []io.Closer
	timeout, err := cfg.FetchTimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	for name, pc := range cfg.Providers {
		key := types.ProviderKey(name)
		if !types.IsKnownProvider(key) {
			return nil, nil, fmt.Errorf("providers.%s: unknown provider", name)
		}
		switch pc.Kind {
		case config.KindOpenAI:
			listers[key] = catalog.NewOpenAIClient(pc.APIKey(), pc.BaseURL)
		case config.KindDir:
			listers[key] = catalog.NewDirClient(pc.Dir, pc.Extensions...)
		default:
			headers := make(map[string]string, len(pc.Headers)+1)
			for k, v := range pc.Headers {
				headers[k] = v
			}
			if token := pc.APIKey(); token != "" {
				headers["Authorization"] = "Bearer " + token
			}
			c := catalog.NewHTTPClient(catalog.HTTPOptions{
				Name:    name,
				BaseURL: pc.BaseURL,
				Headers: headers,
				Timeout: timeout,
				Logger:  logger,
			})
			listers[key] = c
			closers = append(closers, c)
		}
	}
	return listers, closers, nil
}

// Start begins scheduled refreshes, if configured.
func (a *app) Start() {
	if a.sched != nil {
		a.sched.Start()
	}
}

// Close stops the schedule and releases clients and the store backend.
func (a *app) Close() {
	a.ready.Store(false)
	if a.sched != nil {
		if err := a.sched.Stop(); err != nil {
			a.log.Warn().Err(err).Msg("scheduler stop")
		}
	}
	for _, c := range a.closers {
		closeQuietly(c)
	}
	a.closers = nil
}

func closeQuietly(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}

// service adapts the app to httpapi.Service.
type service struct {
	*settings.Store
	*modellist.Cache
	ready *atomic.Bool
}

func (s service) Ready() bool { return s.ready.Load() }

func (a *app) service() service {
	return service{Store: a.store, Cache: a.cache, ready: &a.ready}
}

// logPublisher writes store events to the debug log.
type logPublisher struct{ log zerolog.Logger }

func (p logPublisher) Publish(e settings.Event) {
	ev := p.log.Debug().Str("event", e.Name).Str("provider", string(e.Provider))
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("settings event")
}
