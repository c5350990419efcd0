// Package chat bridges OpenAI-shaped chat requests to the external
// conversational engine and frames the replies for HTTP clients.
package chat

import (
	"context"
	"time"

	"goduck/internal/duckchat"
	"goduck/internal/openai"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "llama-3.3-70b"

// TokenStream is a lazy, finite, non-restartable sequence of reply tokens.
// Recv returns io.EOF after the last token.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Engine produces reply text for a prompt. The model name is opaque here;
// unsupported names are forwarded and any failure is the engine's to report.
type Engine interface {
	Chat(ctx context.Context, prompt, model string) (string, error)
	ChatStream(ctx context.Context, prompt, model string) (TokenStream, error)
}

// Bridge converts one chat request into an engine call and shapes the output.
type Bridge struct {
	engine Engine
}

func NewBridge(engine Engine) *Bridge {
	return &Bridge{engine: engine}
}

// promptFromMessages returns the content of the last message, or an empty
// string when the sequence is empty. Prior turns are not reconstructed.
func promptFromMessages(messages []openai.Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}

func resolveModel(model string) string {
	if model == "" {
		return DefaultModel
	}
	return model
}

// Complete invokes the engine synchronously and wraps the full reply.
func (b *Bridge) Complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletion, error) {
	model := resolveModel(req.Model)
	reply, err := b.engine.Chat(ctx, promptFromMessages(req.Messages), model)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return openai.NewChatCompletion(model, reply, time.Now()), nil
}

// Stream invokes the engine's token-sequence capability. The returned model
// is the resolved one to echo in each chunk; the caller owns the stream.
func (b *Bridge) Stream(ctx context.Context, req openai.ChatCompletionRequest) (TokenStream, string, error) {
	model := resolveModel(req.Model)
	stream, err := b.engine.ChatStream(ctx, promptFromMessages(req.Messages), model)
	if err != nil {
		return nil, model, err
	}
	return stream, model, nil
}

// duckEngine adapts duckchat.Client to the Engine interface.
type duckEngine struct {
	client *duckchat.Client
}

// NewDuckEngine wraps the DuckDuckGo chat client as an Engine.
func NewDuckEngine(client *duckchat.Client) Engine {
	return duckEngine{client: client}
}

func (e duckEngine) Chat(ctx context.Context, prompt, model string) (string, error) {
	return e.client.Chat(ctx, prompt, model)
}

func (e duckEngine) ChatStream(ctx context.Context, prompt, model string) (TokenStream, error) {
	stream, err := e.client.ChatStream(ctx, prompt, model)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
