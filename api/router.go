package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/rankcheck/api/handler"
	"github.com/use-agent/rankcheck/api/middleware"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/location"
	"github.com/use-agent/rankcheck/rank"
	"github.com/use-agent/rankcheck/session"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Lookups: RateLimit
//
// Health, locations and metrics never reach the provider and are not rate limited.
func NewRouter(engine *rank.Engine, dir *location.Directory, reg *session.Registry, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(dir, reg, startTime))

	// Location directory
	v1.GET("/locations", handler.ListLocations(dir))
	v1.GET("/locations/:code", handler.GetLocation(dir))

	// Sessions
	v1.POST("/sessions", handler.CreateSession(reg))
	v1.GET("/sessions/:id", handler.GetSession(reg))
	v1.DELETE("/sessions/:id", handler.DeleteSession(reg))

	// Lookups
	limited := v1.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))
	limited.POST("/rank", handler.Rank(engine))
	limited.POST("/sessions/:id/lookups", handler.SubmitLookup(reg))

	return r
}
