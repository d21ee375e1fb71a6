package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deliverypdv/internal/config"
	"deliverypdv/internal/infra"
	"deliverypdv/internal/repository"
	"deliverypdv/internal/repository/memstore"
	"deliverypdv/internal/router"
	"deliverypdv/internal/service"
	"deliverypdv/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	var (
		db    *gorm.DB
		store repository.Store
	)
	switch cfg.StorageDriver {
	case "memory":
		log.Warn().Msg("STORAGE_DRIVER=memory: data is lost on restart")
		store = memstore.New()
	default:
		db, err = infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		store = repository.NewStore(db)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Receipt and closing PDFs are rendered by the worker pool. With Redis
	// the queue survives restarts; without it jobs stay in process.
	var (
		jobs  service.Jobs
		local *worker.LocalDispatcher
	)
	if rdb != nil {
		jobs = worker.NewDispatcher(rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig("redis-jobs")))
	} else {
		local = worker.NewLocalDispatcher(512)
		jobs = local
	}

	svc := router.NewServices(cfg, store, rdb, jobs)

	handlers := worker.NewPDFWorker(svc.Cupons, svc.Caixa, cfg.PDFStoragePath).Handlers()
	if local != nil {
		local.Start(ctx, cfg.WorkerPoolSize, handlers)
	} else {
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	}

	worker.StartStaleSessionCron(ctx, worker.StaleSessionCronConfig{
		Caixa:    svc.Caixa,
		Interval: cfg.StaleSessionInterval(),
	})
	go svc.Limiter.Purge(ctx, 5*time.Minute)

	r := router.New(cfg, svc, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("storage", cfg.StorageDriver).Bool("redis", rdb != nil).Msgf("deliverypdv listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	cancel()
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
