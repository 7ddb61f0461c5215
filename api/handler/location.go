package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/location"
	"github.com/use-agent/rankcheck/models"
)

// ListLocations returns a handler for GET /api/v1/locations?q=<prefix>.
// An empty q yields an empty list.
func ListLocations(dir *location.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.LocationsResponse{
			Success:   true,
			Locations: dir.Filter(c.Query("q")),
		})
	}
}

// GetLocation returns a handler for GET /api/v1/locations/:code.
func GetLocation(dir *location.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		loc, ok := dir.Lookup(c.Param("code"))
		if !ok {
			respondError(c, models.NewLookupError(models.ErrCodeNotFound, "location not found", nil))
			return
		}
		c.JSON(http.StatusOK, models.LocationResponse{Success: true, Location: &loc})
	}
}
