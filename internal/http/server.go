// README: API gateway; builds the gin engine and delegates to module services.
package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cabfare/internal/http/handlers"
	"cabfare/internal/http/middleware"
	"cabfare/internal/metrics"
	"cabfare/internal/modules/pricing"
)

type ServerDeps struct {
	Pricing *pricing.Service
	// Routes is optional; leave nil when no maps API key is configured.
	Routes handlers.DistanceResolver
	Logger *zap.Logger
}

type Server struct {
	pricing *pricing.Service
	routes  handlers.DistanceResolver
	logger  *zap.Logger
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pricing: deps.Pricing,
		routes:  deps.Routes,
		logger:  logger,
	}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Logging(s.logger),
		middleware.Recovery(s.logger),
		metrics.Middleware(),
	)
	registerRoutes(r, handlers.NewFareHandler(s.pricing, s.routes))
	return r
}
