// Package admin exposes the key-management endpoints guarded by the admin
// secret.
package admin

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"goduck/internal/db"
	"goduck/internal/model"

	"github.com/gin-gonic/gin"
)

// keyBytes is the entropy of a generated key; hex-encoded to 32 characters.
const keyBytes = 16

// CreateKeyRequest is the accepted body for key creation. The key value
// itself is always generated server-side.
type CreateKeyRequest struct {
	Description string `json:"description"`
}

type Handler struct {
	db     db.Service
	logger *slog.Logger
}

func NewHandler(dbService db.Service, logger *slog.Logger) *Handler {
	return &Handler{db: dbService, logger: logger.With("component", "admin")}
}

func (h *Handler) ListAPIKeysHandler(c *gin.Context) {
	keys, err := h.db.ListAPIKeys()
	if err != nil {
		h.logger.Error("Failed to list api keys", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list API keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"api_keys": keys})
}

func (h *Handler) CreateAPIKeyHandler(c *gin.Context) {
	var req CreateKeyRequest
	// An absent or empty body is a key without description.
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	apiKey := &model.APIKey{Key: newKey(), Description: req.Description}
	if err := h.db.CreateAPIKey(apiKey); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "API Key already exists"})
			return
		}
		h.logger.Error("Failed to create api key", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          apiKey.ID,
		"key":         apiKey.Key,
		"description": apiKey.Description,
	})
}

func (h *Handler) DeleteAPIKeyHandler(c *gin.Context) {
	key := c.Param("key")
	if err := h.db.DeleteAPIKey(key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API Key not found"})
			return
		}
		h.logger.Error("Failed to delete api key", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete API key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "API Key deleted"})
}

// newKey returns a fresh random token, hex-encoded.
func newKey() string {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b)
}
