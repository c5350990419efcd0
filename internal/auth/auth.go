package auth

import (
	"net/http"
	"strings"

	"goduck/internal/config"
	"goduck/internal/db"

	"github.com/gin-gonic/gin"
)

// APIKeyContextKey is the gin context key under which the authenticated
// API key is stored. Empty when auth is bypassed.
const APIKeyContextKey = "api_key"

// bearerToken extracts the token from the Authorization header.
// ok is false when the header is absent or malformed.
func bearerToken(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// APIKeyAuth validates the bearer token against the key store.
// Both a malformed header and an unknown key yield 401.
func APIKeyAuth(cfg *config.Config, database db.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.Disabled {
			c.Set(APIKeyContextKey, "")
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing Authorization header"})
			return
		}

		exists, err := database.APIKeyExists(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key"})
			return
		}

		c.Set(APIKeyContextKey, token)
		c.Next()
	}
}

// AdminAuth validates the bearer token against the configured admin secret.
// A malformed header yields 401, a wrong token 403.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.Disabled {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing Authorization header"})
			return
		}
		if token != cfg.Admin.Token {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid admin token"})
			return
		}
		c.Next()
	}
}
