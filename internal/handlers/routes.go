package handlers

import (
	"github.com/gin-gonic/gin"

	"garage-billing-api/internal/config"
	"garage-billing-api/internal/database"
	"garage-billing-api/internal/middleware"
	"garage-billing-api/internal/services"

	"github.com/sirupsen/logrus"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	InvoiceService      *services.InvoiceService
	AutocompleteService *services.AutocompleteService
	ConnectionManager   *database.ConnectionManager
	Logger              *logrus.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *RouterConfig) {
	invoiceHandler := NewInvoiceHandler(cfg.InvoiceService)
	autocompleteHandler := NewAutocompleteHandler(cfg.AutocompleteService)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if cfg.ConnectionManager != nil {
			if err := cfg.ConnectionManager.HealthCheck(); err != nil {
				c.JSON(503, gin.H{
					"status":  "unhealthy",
					"service": "garage-billing-api",
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "garage-billing-api",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		invoices := v1.Group("/invoices")
		{
			invoices.GET("/next", invoiceHandler.ComposeNew)
			invoices.POST("", invoiceHandler.CreateInvoice)
			invoices.GET("", invoiceHandler.ListInvoices)
			invoices.GET("/:invoiceNo", invoiceHandler.GetInvoice)
			invoices.PUT("/:invoiceNo", invoiceHandler.UpdateInvoice)
			invoices.DELETE("/:invoiceNo", invoiceHandler.DeleteInvoice)
		}

		sales := v1.Group("/sales")
		{
			sales.GET("/daily", invoiceHandler.GetDailySales)
			sales.GET("/monthly", invoiceHandler.GetMonthlySales)
			sales.GET("/yearly", invoiceHandler.GetYearlySales)
		}

		autocomplete := v1.Group("/autocomplete")
		{
			autocomplete.GET("/:category", autocompleteHandler.Suggest)
			autocomplete.POST("/:category", autocompleteHandler.Record)
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, cfg *config.Config, logger *logrus.Logger) {
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.ErrorHandler())
}
