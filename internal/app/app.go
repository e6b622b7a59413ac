package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/adbroker-backend/internal/http"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/envutil"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type App struct {
	Log        *logger.Logger
	Cfg        Config
	Clients    Clients
	Repos      Repos
	Aggregates Aggregates
	Services   Services
	Metrics    *observability.Metrics
	Server     *http.Server

	otelShutdown func(context.Context) error
}

// New builds the logger from LOG_MODE, loads the environment and wires everything.
func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	a, err := NewWithConfig(ctx, log, LoadConfig(log))
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})
	metrics := observability.Init(log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	companies, err := loadCompanyDirectory(log, cfg.CompanyDirectoryPath)
	if err != nil {
		clients.Close()
		return nil, fmt.Errorf("load company directory: %w", err)
	}

	reposet := wireRepos(clients.Store.Store, log)
	aggs, err := wireAggregates(log, cfg, clients.Store.Store, companies, metrics)
	if err != nil {
		clients.Close()
		return nil, err
	}
	serviceset := wireServices(log, cfg, clients.Engine, reposet, aggs, companies, metrics)
	handlerset := wireHandlers(log, clients.Store.Store, serviceset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Aggregates:   aggs,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       wireServer(log, cfg, handlerset, metrics),
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled. Metrics collectors stop with it.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Metrics != nil {
		a.Metrics.StartSQLCollector(gctx, a.Log, a.Clients.Store.DB)
		a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Store.Redis)
		a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
	}

	addr := ":" + a.Cfg.Port
	a.Log.Info("Starting HTTP server", "addr", addr, "store", a.Cfg.StoreDriver)
	g.Go(func() error {
		return a.Server.Run(gctx, addr, a.Cfg.ShutdownTimeout)
	})
	err := g.Wait()
	a.Log.Info("HTTP server stopped")
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
