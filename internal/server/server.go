// Package server exposes the HTTP API consumed by the mini app, plus
// health and metrics endpoints.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/weks-labs/rewards-bot/internal/errors"
	"github.com/weks-labs/rewards-bot/internal/health"
	"github.com/weks-labs/rewards-bot/internal/ratelimit"
	"github.com/weks-labs/rewards-bot/internal/reward"
	"github.com/weks-labs/rewards-bot/pkg/config"
)

// Options carries the collaborators the HTTP layer needs.
type Options struct {
	Processor  *reward.Processor
	BotToken   string
	Health     *health.Checker
	Limiter    ratelimit.Limiter
	RateLimit  config.RateLimitConfig
	ErrHandler *apperrors.Handler
	Log        *slog.Logger
}

// Server is the HTTP surface of the rewards service.
type Server struct {
	engine *gin.Engine
	opts   Options
}

// New builds the gin engine with all routes and middleware attached.
func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(correlationMiddleware())
	engine.Use(requestLogMiddleware(opts.Log))
	engine.Use(corsMiddleware())

	s := &Server{engine: engine, opts: opts}

	api := engine.Group("/api")
	api.POST("/claim", s.handleClaim)
	api.POST("/balance", s.handleBalance)

	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Handler returns the engine as an http.Handler for the outer server.
func (s *Server) Handler() http.Handler {
	return s.engine
}
