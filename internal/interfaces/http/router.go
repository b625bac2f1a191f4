// Package http assembles the gin route tree and HTTP server.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent-radar/internal/interfaces/http/handlers"
	"github.com/turtacn/patent-radar/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for
// the route tree.  Nil handlers leave their routes unregistered, which
// keeps partial wiring (tests, trimmed-down workers) working.
type RouterConfig struct {
	Mode string // gin mode: "debug" | "release" | "test"

	Search    *handlers.SearchHandler
	Patents   *handlers.PatentHandler
	Lifecycle *handlers.LifecycleHandler
	Analytics *handlers.AnalyticsHandler
	Citations *handlers.CitationHandler
	Health    *handlers.HealthHandler

	RateLimiter *middleware.RateLimiter
	CORS        *middleware.CORSConfig

	Logger  logging.Logger
	Metrics prometheus.MetricsCollector
	App     *prometheus.AppMetrics
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	if cfg.App != nil {
		r.Use(middleware.Metrics(cfg.App))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Liveness)
		r.GET("/readyz", cfg.Health.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")

	if cfg.Search != nil {
		api.GET("/search", cfg.Search.Search)
	}

	if cfg.Patents != nil {
		api.POST("/patents", cfg.Patents.Ingest)
		api.GET("/patents", cfg.Patents.List)
		api.GET("/patents/:number", cfg.Patents.Get)
		api.POST("/patents/embeddings/backfill", cfg.Patents.BackfillEmbeddings)
	}

	if cfg.Lifecycle != nil {
		api.GET("/patents/:number/term", cfg.Lifecycle.Term)
		api.POST("/patents/:number/term/recompute", cfg.Lifecycle.Recompute)
		api.POST("/patents/:number/fees/:year/payments", cfg.Lifecycle.MarkFeePaid)

		api.GET("/lifecycle/expiring", cfg.Lifecycle.Expiring)
		api.GET("/lifecycle/lapsed", cfg.Lifecycle.Lapsed)
		api.GET("/lifecycle/fees/upcoming", cfg.Lifecycle.UpcomingFees)
		api.GET("/lifecycle/stats", cfg.Lifecycle.Stats)
	}

	if cfg.Citations != nil {
		api.GET("/patents/:number/citations/network", cfg.Citations.Network)
		api.GET("/patents/:number/citations/stats", cfg.Citations.Stats)
		api.GET("/citations/most-cited", cfg.Citations.MostCited)
	}

	if cfg.Analytics != nil {
		api.GET("/analytics/coverage", cfg.Analytics.Coverage)
		api.GET("/analytics/white-spaces", cfg.Analytics.WhiteSpaces)
		api.GET("/analytics/cross-domain", cfg.Analytics.CrossDomain)
		api.GET("/analytics/sections", cfg.Analytics.Sections)
	}

	return r
}
