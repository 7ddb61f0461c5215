package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/session"
)

// CreateSession returns a handler for POST /api/v1/sessions. The body is
// optional.
func CreateSession(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, models.NewLookupError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		s := reg.Create(req.CallbackURL)
		st := s.Tracker.Snapshot()
		c.JSON(http.StatusCreated, models.SessionResponse{Success: true, ID: s.ID, State: &st})
	}
}

// GetSession returns a handler for GET /api/v1/sessions/:id, the observable
// {status, results, matched_position, error} tuple.
func GetSession(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, reg)
		if !ok {
			return
		}
		st := s.Tracker.Snapshot()
		c.JSON(http.StatusOK, models.SessionResponse{Success: true, ID: s.ID, State: &st})
	}
}

// DeleteSession returns a handler for DELETE /api/v1/sessions/:id.
func DeleteSession(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !reg.Delete(c.Param("id")) {
			respondError(c, models.NewLookupError(models.ErrCodeNotFound, "session not found", nil))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SubmitLookup returns a handler for POST /api/v1/sessions/:id/lookups.
//
// The lookup runs in the background; the response only acknowledges the
// submission. Input errors fail synchronously with 400 and are also written
// into the session state.
func SubmitLookup(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, reg)
		if !ok {
			return
		}

		var req models.LookupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewLookupError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		seq, err := s.Tracker.Submit(req)
		if err != nil {
			le := models.AsLookupError(err)
			c.JSON(mapErrorToStatus(le), models.SubmitResponse{
				Success:  false,
				ID:       s.ID,
				Sequence: seq,
				Status:   models.StatusFailed,
				Error:    le.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusAccepted, models.SubmitResponse{
			Success:  true,
			ID:       s.ID,
			Sequence: seq,
			Status:   models.StatusLoading,
		})
	}
}

func lookupSession(c *gin.Context, reg *session.Registry) (*session.Session, bool) {
	s, ok := reg.Get(c.Param("id"))
	if !ok {
		respondError(c, models.NewLookupError(models.ErrCodeNotFound, "session not found", nil))
		return nil, false
	}
	return s, true
}
