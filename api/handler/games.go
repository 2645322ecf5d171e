package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gamexport/cache"
	"github.com/use-agent/gamexport/csvout"
	"github.com/use-agent/gamexport/exporter"
	"github.com/use-agent/gamexport/models"
)

// Games returns a handler for GET /api/v1/users/:username/games.
//
// Query: format=json (default) or format=csv.
//
// Flow:
//  1. Resolve the username (never a URL) into a profile URL on the configured site.
//  2. Serve from cache when a fresh result exists.
//  3. Otherwise run the export and cache completed runs.
//  4. Render as JSON ExportResponse or a CSV attachment.
func Games(runner *exporter.Runner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := c.DefaultQuery("format", "json")
		if format != "json" && format != "csv" {
			respondError(c, models.NewExportError(models.ErrCodeInvalidInput,
				fmt.Sprintf("unsupported format %q: use json or csv", format), nil))
			return
		}

		target, err := runner.ResolveUsername(c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}

		key := cache.Key(target.ProfileURL, runner.MaxPages())
		cacheStatus := "miss"
		var res *models.ExportResult
		if cc != nil {
			if cached, hit := cc.Get(key); hit {
				res, cacheStatus = cached, "hit"
			}
		}

		if res == nil {
			logger := slog.Default().With("username", target.Username)
			res, err = runner.Run(c.Request.Context(), target, exporter.NewLogReporter(logger))
			if err != nil {
				respondError(c, err)
				return
			}
			if cc != nil && res.StopReason != models.StopCanceled {
				cc.Set(key, res)
			}
		}

		if format == "csv" {
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvout.Filename(res.Username)))
			c.Header("X-Cache", cacheStatus)
			c.Status(http.StatusOK)
			if err := csvout.Write(c.Writer, res.Records); err != nil {
				slog.Error("csv response write failed", "username", res.Username, "error", err)
			}
			return
		}

		resp := models.NewExportResponse(res)
		resp.CacheStatus = cacheStatus
		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps an ExportError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var exportErr *models.ExportError
	if !errors.As(err, &exportErr) {
		exportErr = models.NewExportError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(exportErr), models.ExportResponse{
		Success: false,
		Error:   exportErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ExportError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeStrictViolation:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
