package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/api/handlers"
	"github.com/locateflow/locateflow/internal/api/middleware"
	"github.com/locateflow/locateflow/internal/capture"
	"github.com/locateflow/locateflow/internal/domain"
	"github.com/locateflow/locateflow/internal/locator"
	"github.com/locateflow/locateflow/internal/observability"
	"github.com/locateflow/locateflow/internal/repository/postgres"
	rediscache "github.com/locateflow/locateflow/internal/repository/redis"
	"github.com/locateflow/locateflow/pkg/httputil"
)

// Router holds the HTTP router and its dependencies
type Router struct {
	chi.Router
	logger *zap.Logger
}

// RouterConfig contains configuration for the router
type RouterConfig struct {
	Engine         *locator.Engine
	DB             *postgres.DB
	Repos          *postgres.Repositories
	Cache          *rediscache.Cache
	Capture        *capture.Service
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	EnableCORS     bool
	RateLimit      int
	HistoryEnabled bool
	MaxPageSize    int
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Handler)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Handler)
	r.Use(chimw.Timeout(60 * time.Second))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.HTTPMiddleware)
	}

	// CORS configuration
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Rate limiting (if Redis is available)
	if cfg.Cache != nil && cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimitMiddleware(cfg.Cache, cfg.RateLimit, true).Handler)
	}

	// Operational endpoints
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(cfg.DB, cfg.Cache))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	engine := cfg.Engine
	if engine == nil {
		engine = locator.NewEngine(cfg.Logger)
	}

	var repo domain.InspectionRepository
	if cfg.HistoryEnabled && cfg.Repos != nil {
		repo = cfg.Repos.Inspections
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		inspectHandler := handlers.NewInspectHandler(engine, repo, cfg.Cache, cfg.Capture, cfg.Metrics, cfg.Logger)
		r.Post("/inspect", inspectHandler.Inspect)

		if repo != nil {
			historyHandler := handlers.NewHistoryHandler(repo, cfg.Cache, cfg.MaxPageSize, cfg.Logger)
			r.Route("/inspections", func(r chi.Router) {
				r.Get("/", historyHandler.List)
				r.Get("/export", historyHandler.Export)
				r.Get("/{id}", historyHandler.Get)
				r.Delete("/{id}", historyHandler.Delete)
			})
		}
	})

	return &Router{
		Router: r,
		logger: cfg.Logger,
	}
}

// healthHandler returns basic health status
func healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "locateflow-api",
	})
}

// readyHandler checks if all dependencies are ready
func readyHandler(db *postgres.DB, cache *rediscache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		allHealthy := true

		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				checks["database"] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				checks["database"] = "healthy"
			}
		} else {
			checks["database"] = "not configured"
		}

		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				checks["redis"] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				checks["redis"] = "healthy"
			}
		} else {
			checks["redis"] = "not configured"
		}

		status := http.StatusOK
		statusText := "ready"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			statusText = "not ready"
		}

		httputil.JSON(w, status, map[string]any{
			"status": statusText,
			"checks": checks,
		})
	}
}
