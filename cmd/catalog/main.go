package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/catalog/internal/config"
	"github.com/Skotchmaster/catalog/internal/events"
	"github.com/Skotchmaster/catalog/internal/httpserver"
	"github.com/Skotchmaster/catalog/internal/metrics"
	"github.com/Skotchmaster/catalog/internal/middleware"
	"github.com/Skotchmaster/catalog/internal/repo"
	"github.com/Skotchmaster/catalog/internal/search"
	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/worker/cleanup"
	pkgdb "github.com/Skotchmaster/catalog/pkg/db"
	"github.com/Skotchmaster/catalog/pkg/logging"
	loggingmw "github.com/Skotchmaster/catalog/pkg/middleware/logging"
	"github.com/Skotchmaster/catalog/pkg/tokens"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	rp := repo.New(db)
	if err := rp.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	cancel()

	issuer, err := tokens.NewIssuer(cfg.TokenConfig())
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	publisher := events.New(cfg.KafkaBrokers)

	var indexer search.Indexer = search.Nop{}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("search_disabled", "reason", "cannot reach elasticsearch", "error", err)
		} else {
			indexer = search.NewESIndexer(es, cfg.ESIndex)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	authSvc := &service.AuthService{Repo: rp, Tokens: issuer, Events: publisher, Metrics: collector}
	itemSvc := &service.ItemService{Repo: rp, Index: indexer, Events: publisher}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc},
		ItemHandler: &httpserver.ItemHTTP{Svc: itemSvc},
		Gate:        middleware.NewGate(issuer, rp, collector),
		DB:          db,
		Gatherer:    reg,
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go cleanup.New(rp, collector, logger, cfg.CleanupRetention).Start(workerCtx, cfg.CleanupInterval)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	stopWorker()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}
