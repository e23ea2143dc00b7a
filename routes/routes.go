package routes

import (
	"net/http"

	"rate-shopper/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterQuoteRoutes sets up the quote API. apiMiddleware runs only on /api.
func RegisterQuoteRoutes(r *gin.Engine, qc *controllers.QuoteController, apiMiddleware ...gin.HandlerFunc) {
	r.GET("/", qc.Index)

	api := r.Group("/api")
	api.Use(apiMiddleware...)
	api.POST("/get-rates", qc.GetRates)
	api.GET("/health", qc.Health)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found", "path": c.Request.URL.Path})
	})
}
