package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/rank"
)

// Rank returns a handler for POST /api/v1/rank.
//
// Orchestration flow:
//  1. Parse request.
//  2. Engine.Lookup: validate, normalize, one provider call, match.
//  3. Fill timing, return 200 (found or not found alike).
func Rank(engine *rank.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.LookupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewLookupError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		result, err := engine.Lookup(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.RankResponse{
			Success:         true,
			Query:           req.Query,
			CountryCode:     req.CountryCode,
			TargetHost:      result.TargetHost,
			Results:         result.Results,
			MatchedPosition: result.MatchedPosition,
			TotalResults:    len(result.Results),
			Timing: models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			},
		})
	}
}
