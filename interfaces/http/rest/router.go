package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"braingraph/interfaces/http/rest/handlers"
	"braingraph/interfaces/http/rest/middleware"
	"braingraph/pkg/common"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
	"braingraph/pkg/ratelimit"
)

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	EnableMetrics  bool
	Debug          bool
	RequestTimeout time.Duration

	// RenderRateLimit is renders per client per minute, 0 disables
	RenderRateLimit int
}

// Router creates and configures the HTTP router
type Router struct {
	cfg       RouterConfig
	snapshots handlers.Renderer
	newReader func() handlers.GraphReader
	presets   handlers.PresetSource
	ready     func() error
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewRouter creates a new router instance. ready may be nil.
func NewRouter(
	cfg RouterConfig,
	snapshots handlers.Renderer,
	newReader func() handlers.GraphReader,
	presets handlers.PresetSource,
	ready func() error,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:       cfg,
		snapshots: snapshots,
		newReader: newReader,
		presets:   presets,
		ready:     ready,
		metrics:   metrics,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestContext)
	router.Use(middleware.Logger(rt.logger, rt.metrics))
	router.Use(errorHandler.Middleware)
	if rt.cfg.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.cfg.RequestTimeout))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Scene-Status", "X-Scene-Nodes", "X-Scene-Edges"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics && rt.metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		viewHandler := handlers.NewViewHandler(rt.snapshots, errorHandler, rt.logger)
		r.Group(func(r chi.Router) {
			if limiter := rt.renderLimiter(); limiter != nil {
				r.Use(middleware.RateLimit(limiter, errorHandler, rt.logger))
			}
			r.Get("/views/{view}", viewHandler.Render)
		})

		graphHandler := handlers.NewGraphHandler(rt.newReader, rt.presets, errorHandler, rt.logger)
		r.Get("/search", graphHandler.Search)
		r.Get("/stats", graphHandler.Stats)
		r.Get("/overview", graphHandler.Overview)
		r.Get("/presets", graphHandler.Presets)
	})

	return router
}

func (rt *Router) renderLimiter() ratelimit.Limiter {
	if rt.cfg.RenderRateLimit <= 0 {
		return nil
	}
	limiter, err := ratelimit.PerMinute(rt.cfg.RenderRateLimit)
	if err != nil {
		rt.logger.Error("render rate limit disabled", zap.Error(err))
		return nil
	}
	return limiter
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, req, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports whether the graph backend is reachable
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.ready != nil {
		if err := rt.ready(); err != nil {
			rt.logger.Warn("readiness check failed", zap.Error(err))
			common.RespondJSON(w, req, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": err.Error(),
			})
			return
		}
	}
	common.RespondJSON(w, req, http.StatusOK, map[string]string{"status": "ready"})
}
