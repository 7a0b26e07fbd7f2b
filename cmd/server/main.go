// The server exposes the published-statistics read API. It serves only data
// that has already been through the privacy pipeline; no raw record ever
// crosses this process boundary.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	statstore "worklens/internal/aggregation/store/stats"
	"worklens/internal/analytics"
	analyticshandler "worklens/internal/analytics/handler"
	"worklens/internal/platform/config"
	"worklens/internal/platform/httpserver"
	"worklens/internal/platform/logger"
	"worklens/internal/platform/metrics"
	"worklens/internal/platform/postgres"
	platformredis "worklens/internal/platform/redis"
	"worklens/internal/stats"
	statshandler "worklens/internal/stats/handler"
	"worklens/pkg/platform/middleware/requestid"
	"worklens/pkg/platform/middleware/requesttime"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		statReader   stats.StatReader
		reportSource analytics.ReportSource
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		statReader = statstore.NewPostgres(db)
		reportSource = analytics.NewPostgresReports(db)
	} else {
		log.Warn("WORKLENS_DB_URL not set, serving from empty in-memory stores")
		statReader = statstore.NewMemory()
		reportSource = analytics.NewMemoryReports()
	}

	var cache *stats.SummaryCache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = stats.NewSummaryCache(redisClient.Client, cfg.Redis.SummaryTTL)
	}

	statsSvc, err := stats.New(statReader, cache, log)
	if err != nil {
		log.Error("stats service setup failed", "error", err)
		os.Exit(1)
	}
	analyticsSvc, err := analytics.New(reportSource, cfg.Privacy, log)
	if err != nil {
		log.Error("analytics service setup failed", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(chimiddleware.Recoverer)

	statshandler.New(statsSvc, log).Register(r)
	analyticshandler.New(analyticsSvc, log).Register(r)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r)

	log.Info("starting worklens server", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
