package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ancpricing/docs"
	"ancpricing/internal/handler"
	"ancpricing/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	pricingH *handler.PricingHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/healthz", "/readyz"))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	pricing := v1.Group("/pricing")
	pricing.POST("/import", pricingH.Import)
	pricing.GET("", pricingH.List)
	pricing.GET("/:id", pricingH.GetByID)
	pricing.GET("/:id/validation", pricingH.GetValidation)
	pricing.POST("/:id/totals", pricingH.ComputeTotals)
	pricing.POST("/:id/revalidate", pricingH.Revalidate)
	pricing.GET("/:id/export-check", pricingH.ExportCheck)
	pricing.POST("/:id/export.csv", pricingH.ExportCSV)
	pricing.GET("/:id/source", pricingH.GetSourceURL)
	pricing.DELETE("/:id", pricingH.Delete)

	return r
}
