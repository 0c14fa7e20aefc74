package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Engine  BookingEngine
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  *zap.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Reservation endpoints
	r.Get("/resources", listResourcesHandler(cfg.Engine))
	r.Get("/availability", availabilityHandler(cfg.Engine))
	r.Post("/holds", createHoldHandler(cfg.Engine))
	r.Get("/commitments/{id}", getCommitmentHandler(cfg.Engine))
	r.Post("/commitments/{id}/confirm", confirmHandler(cfg.Engine))

	return r
}
