package admin

import (
	"log/slog"

	"goduck/internal/auth"
	"goduck/internal/config"
	"goduck/internal/db"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the key-management endpoints behind admin auth.
func SetupRoutes(router *gin.Engine, dbService db.Service, cfg *config.Config, logger *slog.Logger) {
	handler := NewHandler(dbService, logger)

	keys := router.Group("/api-keys")
	keys.Use(auth.AdminAuth(cfg))
	{
		keys.GET("", handler.ListAPIKeysHandler)
		keys.POST("", handler.CreateAPIKeyHandler)
		keys.DELETE("/:key", handler.DeleteAPIKeyHandler)
	}
}
