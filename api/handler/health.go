package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/location"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/session"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Reports "degraded" when the location directory finished loading with no
// entries: lookups still work but the operator gets no suggestions.
func Health(dir *location.Directory, reg *session.Registry, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		loaded := dir.Loaded()
		count := len(dir.Locations())

		status := "healthy"
		if loaded && count == 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:          status,
			Uptime:          time.Since(startTime).Round(time.Second).String(),
			Version:         Version,
			LocationsLoaded: loaded,
			LocationCount:   count,
			ActiveSessions:  reg.Len(),
		})
	}
}
