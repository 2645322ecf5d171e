package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gamexport/cache"
	"github.com/use-agent/gamexport/exporter"
	"github.com/use-agent/gamexport/models"
)

// Health returns a handler for GET /api/v1/health.
func Health(runner *exporter.Runner, cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := 0
		if cc != nil {
			entries = cc.Len()
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       "healthy",
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			Engine:       runner.EngineName(),
			CacheEntries: entries,
			Version:      models.Version,
		})
	}
}
