package handlers

import (
	"net/http"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/logic"
)

// PersistQueue exposes the worker pool depth for readiness reporting.
type PersistQueue interface {
	QueueDepth() int
}

type Config struct {
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	WorkerPool PersistQueue
	Logger     *zap.Logger
	// Services
	Report *logic.ReportService
}

type Handler struct {
	pg        *pgxpool.Pool
	ch        driver.Conn
	redis     *redis.Client
	pool      PersistQueue
	logger    *zap.SugaredLogger
	validator *validator.Validate
	report    *logic.ReportService
}

func New(cfg Config) *Handler {
	return &Handler{
		pg:        cfg.Postgres,
		ch:        cfg.ClickHouse,
		redis:     cfg.Redis,
		pool:      cfg.WorkerPool,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
		report:    cfg.Report,
	}
}

// Routes builds the HTTP router.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/summoners/{riotId}/report", h.SummonerReport)
	})

	return r
}
