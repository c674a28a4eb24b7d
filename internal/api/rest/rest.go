package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/flagquest/flagnode/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Flag endpoints (public read access)
		v1.GET("/flags", handler.ListFlags)
		v1.GET("/flags/:id", handler.GetFlag)
		v1.GET("/flags/:id/tokens", handler.GetFlagTokens)
		v1.GET("/flags/:id/price", handler.GetFlagPrice)

		// Minting endpoints (open; callers are identified by wallet address)
		v1.POST("/flags/:id/claim", handler.Claim)
		v1.POST("/flags/:id/purchase", handler.Purchase)

		// Token and user endpoints (public read access)
		v1.GET("/tokens/:id", handler.GetToken)
		v1.GET("/users/:address/tier", handler.GetUserTier)

		// Registry-wide views (public read access)
		v1.GET("/stats", handler.GetStats)
		v1.GET("/events", handler.ListEvents)

		// Admin endpoints (requires authentication)
		admin := v1.Group("/admin", middleware.Auth(authCfg))
		{
			admin.POST("/flags", handler.RegisterFlag)
			admin.POST("/flags/batch", handler.BatchRegisterFlags)
			admin.POST("/flags/:id/metadata", handler.SetMetadataHash)
			admin.PUT("/base-uri", handler.SetBaseURI)
			admin.POST("/withdraw", handler.Withdraw)
		}
	}
}
