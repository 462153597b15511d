package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/segubroker/cotizador/api/handler"
	"github.com/segubroker/cotizador/api/middleware"
	"github.com/segubroker/cotizador/config"
	"github.com/segubroker/cotizador/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health stays open so probes work unauthenticated.
	v1.GET("/health", handler.Health(startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Quote
	protected.POST("/quote", handler.Quote(sc))

	// Debug snapshot for selector-table maintenance.
	protected.GET("/debug/snapshot", handler.Snapshot(sc))

	return r
}
