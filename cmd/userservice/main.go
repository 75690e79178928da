// Command userservice runs the primary service: user CRUD over HTTP backed
// by Postgres, publishing a mutation event to the bus after each commit.
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

	"usertrail/internal/event/stream"
	"usertrail/internal/platform/config"
	"usertrail/internal/platform/httpserver"
	"usertrail/internal/platform/kafka"
	"usertrail/internal/platform/logger"
	"usertrail/internal/platform/metrics"
	"usertrail/internal/user/handler"
	"usertrail/internal/user/service"
	"usertrail/internal/user/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "userservice: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.UserServiceFromEnv()
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

	if err := kafka.EnsureTopic(ctx, cfg.Kafka); err != nil {
		return err
	}
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	defer producer.Close()

	m := metrics.NewUserService()
	publisher := stream.NewPublisher(producer, log, stream.WithMetrics(m))
	users := service.New(store.NewPostgres(db), publisher, log, service.WithMetrics(m))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	handler.New(users, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("user service listening", "addr", cfg.Addr, "topic", cfg.Kafka.Topic)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
