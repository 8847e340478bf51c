package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/drapery_api/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Catalog    *CatalogHandler
	Panel      *PanelHandler
	Preference *PreferenceHandler
	SSE        *SSEHandler
}

// SetupRoutes registers all routes.
func SetupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.LoginRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	auth := router.Group("/v1/auth")
	if loginLimiter != nil {
		auth.Use(loginLimiter.Handle())
	}
	auth.POST("/login", handlers.Auth.Login)

	// Event stream authenticates with ?token= since EventSource cannot send headers.
	if handlers.SSE != nil {
		router.GET("/v1/panels/:id/events", jwtMiddleware.WithQueryToken().Handle(), handlers.SSE.Stream)
	}

	api := router.Group("/v1")
	api.Use(jwtMiddleware.Handle())
	{
		api.GET("/treatments", handlers.Catalog.ListTreatments)

		catalog := api.Group("/catalog")
		catalog.GET("/items", handlers.Catalog.ListItems)
		catalog.GET("/items/:id", handlers.Catalog.GetItem)
		catalog.GET("/filters", handlers.Catalog.FilterOptions)
		catalog.GET("/vendors", handlers.Catalog.ListVendors)
		catalog.GET("/collections", handlers.Catalog.ListCollections)
		catalog.POST("/import", handlers.Catalog.Import)

		panels := api.Group("/panels")
		panels.POST("", handlers.Panel.Open)
		panels.GET("/:id", handlers.Panel.Get)
		panels.DELETE("/:id", handlers.Panel.Close)
		panels.PUT("/:id/treatment", handlers.Panel.SetTreatment)
		panels.PUT("/:id/tab", handlers.Panel.SetTab)
		panels.PATCH("/:id/filters", handlers.Panel.ApplyFilter)
		panels.POST("/:id/load-more", handlers.Panel.LoadMore)
		panels.POST("/:id/items/:itemId/click", handlers.Panel.Click)
		panels.GET("/:id/items/:itemId/cost", handlers.Panel.EstimateCost)
		panels.POST("/:id/recents/:itemId/select", handlers.Panel.SelectRecent)
		panels.DELETE("/:id/selection/:category", handlers.Panel.Deselect)
		panels.GET("/:id/selection", handlers.Panel.Selection)
		panels.POST("/:id/manual", handlers.Panel.AddManual)
		panels.POST("/:id/favorites/:itemId", handlers.Panel.ToggleFavorite)
		panels.PUT("/:id/measurements", handlers.Panel.SetMeasurements)
		panels.GET("/:id/export.pdf", handlers.Panel.ExportPDF)

		me := api.Group("/me")
		me.GET("/recents", handlers.Preference.ListRecents)
		me.DELETE("/recents", handlers.Preference.ClearRecents)
		me.GET("/favorites", handlers.Preference.ListFavorites)
		me.POST("/favorites/:itemId", handlers.Preference.ToggleFavorite)
	}
}
