package controllers

import (
	"net/http"
	"time"

	"rate-shopper/models"
	"rate-shopper/services"

	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "Rate Shopper API"
	ServiceVersion = "1.0.0"
)

// QuoteController handles HTTP requests for rate quotes.
type QuoteController struct {
	quoteService services.QuoteService
}

// NewQuoteController creates a new QuoteController.
func NewQuoteController(svc services.QuoteService) *QuoteController {
	return &QuoteController{quoteService: svc}
}

// GetRates handles POST /api/get-rates
func (qc *QuoteController) GetRates(ctx *gin.Context) {
	var doc models.ShipmentDocument
	if err := ctx.ShouldBindJSON(&doc); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipment data", "details": validationDetails(err)})
		return
	}

	resp, svcErr := qc.quoteService.GetRates(ctx.Request.Context(), &doc)
	if svcErr != nil {
		_ = ctx.Error(svcErr)
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Health handles GET /api/health
func (qc *QuoteController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"provider":  qc.quoteService.ProviderName(),
	})
}

// Index handles GET /
func (qc *QuoteController) Index(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"name":        ServiceName,
		"version":     ServiceVersion,
		"description": "Compares shipping rates across every carrier contract of the account",
		"provider":    qc.quoteService.ProviderName(),
		"endpoints": gin.H{
			"health": "GET /api/health",
			"rates":  "POST /api/get-rates",
		},
	})
}
