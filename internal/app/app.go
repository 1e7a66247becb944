package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/db"
	httpserver "github.com/yungbote/overlay-backend/internal/http"
	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
	"github.com/yungbote/overlay-backend/internal/realtime/bus"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus
	Metrics  *observability.Metrics
	Server   *httpserver.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel(Version))

	dbService, err := db.NewService(cfg.DB(), log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics(15 * time.Second)
	}

	hub := realtime.NewHub(log)
	notify, liveBus, err := wireLive(log, cfg, hub, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("init live bus: %w", err)
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, notify, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(theDB, log, cfg, serviceset, hub, notify)
	server := wireRouter(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Hub:          hub,
		Bus:          liveBus,
		Metrics:      metrics,
		Server:       server,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and, when configured, forwards bus traffic into the local
// hub. It returns when ctx ends or any part fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	if a.Bus != nil {
		g.Go(func() error {
			return a.Bus.StartForwarder(ctx, func(env realtime.Envelope) {
				a.Hub.Broadcast(ctx, env.Message, env.Group, nil)
			})
		})
	}

	a.Metrics.StartHubCollector(ctx, a.Hub)
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)

	g.Go(func() error {
		a.Log.Info("http server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run(ctx, a.Cfg.HTTPAddr)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("close live bus", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
