package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gamexport/api/handler"
	"github.com/use-agent/gamexport/api/middleware"
	"github.com/use-agent/gamexport/cache"
	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/exporter"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The health endpoint sits outside auth.
func NewRouter(runner *exporter.Runner, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health, no auth required.
	v1.GET("/health", handler.Health(runner, cc, startTime))

	// Protected group: auth, then rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.GET("/users/:username/games", handler.Games(runner, cc))

	return r
}
