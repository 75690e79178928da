// Command eventservice runs the secondary service: it consumes user mutation
// events from the bus into the append-only audit log and serves per-entity
// history over HTTP, optionally fronted by a Redis read cache.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"usertrail/internal/event/handler"
	"usertrail/internal/event/listener"
	"usertrail/internal/event/service"
	"usertrail/internal/event/store"
	"usertrail/internal/platform/config"
	"usertrail/internal/platform/httpserver"
	"usertrail/internal/platform/kafka"
	"usertrail/internal/platform/logger"
	"usertrail/internal/platform/metrics"
	"usertrail/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventservice: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.EventServiceFromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		return err
	}

	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
		log.Info("events read cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	if err := kafka.EnsureTopic(ctx, cfg.Kafka); err != nil {
		return err
	}

	m := metrics.NewEventService()
	opts := []service.Option{service.WithMetrics(m)}
	if cache != nil {
		opts = append(opts, service.WithCache(cache, cfg.Redis.CacheTTL))
	}
	audit := service.New(store.NewPostgres(db), log, opts...)

	consumer, err := kafka.NewConsumer(cfg.Kafka, listener.New(audit, log, listener.WithMetrics(m)), log)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	handler.New(audit, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("event service listening", "addr", cfg.Addr, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("consumer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
