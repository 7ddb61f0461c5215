package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/models"
)

// respondError maps a LookupError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	le := models.AsLookupError(err)
	c.JSON(mapErrorToStatus(le), gin.H{
		"success": false,
		"error":   le.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.LookupError) int {
	switch e.Code {
	case models.ErrCodeMissingInput, models.ErrCodeMalformedWebsite, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeProviderUnavailable:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
