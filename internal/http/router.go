// README: HTTP route registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabfare/internal/http/handlers"
	"cabfare/internal/metrics"
)

func registerRoutes(r *gin.Engine, fares *handlers.FareHandler) {
	api := r.Group("/api")
	api.POST("/fares/quote", fares.Quote)
	api.POST("/fares/quote/vehicles", fares.QuoteVehicles)
	api.GET("/pricing/rules", fares.Rules)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", metrics.Handler())
}
