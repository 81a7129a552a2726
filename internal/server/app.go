// Package server initializes and runs the vehicle data center service:
// database, repositories, business services, HTTP endpoint, and the sync
// scheduler.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pacpoom/interface-vdc/internal/logging"
	"github.com/pacpoom/interface-vdc/internal/server/audit"
	"github.com/pacpoom/interface-vdc/internal/server/config"
	"github.com/pacpoom/interface-vdc/internal/server/httpapi"
	"github.com/pacpoom/interface-vdc/internal/server/platform"
	"github.com/pacpoom/interface-vdc/internal/server/repositories/repomanager"
	"github.com/pacpoom/interface-vdc/internal/server/scheduler"
	"github.com/pacpoom/interface-vdc/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     *logging.ZapLogger
	db         *sql.DB
	httpServer *httpapi.Server
	scheduler  *scheduler.Scheduler
}

// NewApp wires the application. The database must be reachable: a failed
// ping is fatal and the process refuses to start.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger, err := logging.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db connection check failed: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	sink := audit.NewSink(db, m, logger)
	pusher := platform.NewClient(cfg.PlatformURL, cfg.PlatformAppID, cfg.PlatformAPICode, cfg.PlatformTimeout)

	lifecycleSvc := services.NewLifecycleService(db, m, sink, logger)
	syncSvc := services.NewSyncService(db, m, pusher, sink, logger)
	userSvc := services.NewUserService(db, m, sink, cfg)

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, userSvc, lifecycleSvc, syncSvc, []byte(cfg.SecretKey))
	sched := scheduler.New(cfg.SyncInterval, syncSvc, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		scheduler:  sched,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the HTTP server and the sync scheduler and blocks until both
// have stopped.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(gctx) })
	g.Go(func() error { return app.scheduler.Run(gctx) })

	err := g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}
	app.logger.Sync()

	return err
}
