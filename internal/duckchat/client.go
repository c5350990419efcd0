// Package duckchat is a client for the DuckDuckGo AI chat backend, the
// external engine producing completions for the gateway.
package duckchat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	defaultStatusURL = "https://duckduckgo.com/duckchat/v1/status"
	defaultChatURL   = "https://duckduckgo.com/duckchat/v1/chat"

	vqdAcceptHeader = "x-vqd-accept"
	vqdHeader       = "x-vqd-4"
)

// ErrUpstream marks any network or backend failure of the chat engine.
var ErrUpstream = errors.New("duckchat upstream error")

// modelAliases maps the short model names exposed by the API to the
// identifiers the backend expects. Unknown names pass through unchanged;
// the backend reports its own error for unsupported models.
var modelAliases = map[string]string{
	"gpt-4o-mini":    "gpt-4o-mini",
	"o3-mini":        "o3-mini",
	"llama-3.3-70b":  "meta-llama/Llama-3.3-70B-Instruct-Turbo",
	"claude-3-haiku": "claude-3-haiku-20240307",
	"mixtral-8x7b":   "mistralai/Mixtral-8x7B-Instruct-v0.1",
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the DuckDuckGo chat endpoints. Each call performs its own
// vqd handshake; no session state is shared between requests. No timeout is
// applied, a hanging backend hangs the caller.
type Client struct {
	httpClient HTTPClient
	statusURL  string
	chatURL    string
	logger     *slog.Logger
}

// NewClient creates a Client against the production endpoints.
func NewClient(logger *slog.Logger) *Client {
	return newClientWithURLs(&http.Client{}, defaultStatusURL, defaultChatURL, logger)
}

// newClientWithURLs is the internal constructor that allows custom endpoints,
// making the client testable.
func newClientWithURLs(httpClient HTTPClient, statusURL, chatURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		statusURL:  statusURL,
		chatURL:    chatURL,
		logger:     logger.With("component", "duckchat"),
	}
}

// vqd performs the handshake that yields the per-conversation token the chat
// endpoint requires.
func (c *Client) vqd(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set(vqdAcceptHeader, "1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: status request failed: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	token := resp.Header.Get(vqdHeader)
	if token == "" {
		return "", fmt.Errorf("%w: status response carried no %s header", ErrUpstream, vqdHeader)
	}
	return token, nil
}

type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatStream sends the prompt and returns the lazy token stream of the reply.
// The stream is finite and non-restartable; the caller must Close it.
func (c *Client) ChatStream(ctx context.Context, prompt, model string) (*Stream, error) {
	token, err := c.vqd(ctx)
	if err != nil {
		return nil, err
	}

	payload := chatPayload{
		Model:    resolveAlias(model),
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(vqdHeader, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: chat request failed: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		c.logger.Warn("Chat request rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: chat request returned status %d: %s",
			ErrUpstream, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return newStream(resp.Body), nil
}

// Chat sends the prompt and drains the token stream into one reply string.
func (c *Client) Chat(ctx context.Context, prompt, model string) (string, error) {
	stream, err := c.ChatStream(ctx, prompt, model)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		token, err := stream.Recv()
		if err == io.EOF {
			return reply.String(), nil
		}
		if err != nil {
			return "", err
		}
		reply.WriteString(token)
	}
}

func resolveAlias(model string) string {
	if upstream, ok := modelAliases[model]; ok {
		return upstream
	}
	return model
}
