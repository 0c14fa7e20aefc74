package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/slotwise/booking-engine/internal/config"
	"github.com/slotwise/booking-engine/internal/logging"
	"github.com/slotwise/booking-engine/internal/notify"
)

// The notify worker consumes confirmation tasks enqueued by the api-server
// and hands them to the delivery layer. Delivery failure never rolls back a
// reservation; asynq retries with backoff.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("notify-worker starting up", zap.String("env", cfg.Env))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TypeCommitmentConfirmed, notify.NewHandler(logger))

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Fatal("asynq server error", zap.Error(err))
		}
	}()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-rootCtx.Done()
	logger.Info("shutdown signal received, stopping notify worker")
	srv.Shutdown()
}
