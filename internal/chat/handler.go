package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"goduck/internal/auth"
	"goduck/internal/config"
	"goduck/internal/db"
	"goduck/internal/openai"

	"github.com/gin-gonic/gin"
)

// Handler serves the OpenAI-compatible completion endpoint.
type Handler struct {
	bridge *Bridge
	db     db.Service
	logger *slog.Logger
}

func NewHandler(engine Engine, database db.Service, logger *slog.Logger) *Handler {
	return &Handler{
		bridge: NewBridge(engine),
		db:     database,
		logger: logger.With("component", "chat"),
	}
}

// SetupRoutes registers the completion endpoint behind API-key auth.
func SetupRoutes(router *gin.Engine, handler *Handler, cfg *config.Config, database db.Service) {
	router.POST("/chat/completions", auth.APIKeyAuth(cfg, database), handler.Completions)
}

func (h *Handler) Completions(c *gin.Context) {
	var req openai.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Stream {
		h.streamCompletion(c, req)
		return
	}

	resp, err := h.bridge.Complete(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Upstream chat request failed", "model", req.Model, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream engine error"})
		return
	}
	h.countUsage(c)
	c.JSON(http.StatusOK, resp)
}

// streamCompletion frames the engine's token sequence as server-sent events.
// Once headers are flushed a mid-stream failure can only close the stream;
// frames already sent stay intact.
func (h *Handler) streamCompletion(c *gin.Context, req openai.ChatCompletionRequest) {
	stream, model, err := h.bridge.Stream(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Upstream stream setup failed", "model", req.Model, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream engine error"})
		return
	}
	defer stream.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	h.countUsage(c)

	// c.Stream flushes after every step and stops when the client goes away;
	// the request context then cancels the upstream pull via stream.Close.
	c.Stream(func(w io.Writer) bool {
		token, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintf(w, "data: %s\n\n", openai.StreamTerminator)
			} else {
				h.logger.Warn("Upstream stream terminated", "model", model, "error", err)
			}
			return false
		}

		chunk := openai.NewChatCompletionChunk(model, token, time.Now())
		data, err := json.Marshal(chunk)
		if err != nil {
			h.logger.Error("Failed to encode chunk", "error", err)
			return false
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		return true
	})
}

// countUsage bumps the authenticated key's usage counter in the background.
func (h *Handler) countUsage(c *gin.Context) {
	key := c.GetString(auth.APIKeyContextKey)
	if key == "" {
		return
	}
	go func() {
		if err := h.db.IncrementAPIKeyUsage(key); err != nil {
			h.logger.Warn("Failed to increment api key usage", "error", err)
		}
	}()
}
