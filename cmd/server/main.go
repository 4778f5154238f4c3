package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mbodj/packhouse/internal/config"
	"github.com/mbodj/packhouse/internal/repository"
	"github.com/mbodj/packhouse/internal/repository/jsonfile"
	"github.com/mbodj/packhouse/internal/repository/mongodb"
	"github.com/mbodj/packhouse/internal/repository/sheets"
	"github.com/mbodj/packhouse/internal/scheduler"
	"github.com/mbodj/packhouse/internal/server/handlers"
	"github.com/mbodj/packhouse/internal/server/router"
	mirrorsvc "github.com/mbodj/packhouse/internal/service/mirror"
	packlogsvc "github.com/mbodj/packhouse/internal/service/packlog"
	reportingsvc "github.com/mbodj/packhouse/internal/service/reporting"
	"github.com/mbodj/packhouse/pkg/clients/graph"
	"github.com/mbodj/packhouse/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, cleanup, err := newStore(cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer cleanup()

	var mirror packlogsvc.Mirror
	if cfg.Graph.Enabled() {
		graphClient := graph.NewClient(cfg.Graph)
		mirror = mirrorsvc.NewSharePointMirror(graphClient, cfg.Graph.ListName, baseLogger.Named("svc.mirror"))
		baseLogger.Info("sharepoint mirror enabled", zap.String("list", cfg.Graph.ListName))
	}

	packlogSvc := packlogsvc.NewService(store, mirror, cfg.Costing.HourlyRate, baseLogger.Named("svc.packlog"))
	reportingSvc := reportingsvc.NewService(store, baseLogger.Named("svc.reporting"))

	entryHandler := handlers.NewEntryHandler(packlogSvc, reportingSvc, baseLogger.Named("handlers.entries"))
	engine := router.New(entryHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Export, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newStore(cfg *config.Config, baseLogger *zap.Logger) (repository.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Driver {
	case config.DriverMongo:
		mongoStore, err := mongodb.NewStore(context.Background(), cfg.Store.MongoURI, cfg.Store.MongoDBName)
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
		return mongoStore, cleanup, nil
	case config.DriverSheets:
		sheetStore, err := sheets.NewStore(context.Background(), cfg.Store, baseLogger.Named("repo.sheets"))
		if err != nil {
			return nil, noop, err
		}
		return sheetStore, noop, nil
	default:
		fileStore, err := jsonfile.NewStore(cfg.Store.FilePath)
		if err != nil {
			return nil, noop, err
		}
		return fileStore, noop, nil
	}
}
