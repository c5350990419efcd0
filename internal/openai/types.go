// Package openai holds the OpenAI-compatible wire types produced by the
// chat completion endpoint.
package openai

import "time"

const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"

	RoleAssistant = "assistant"

	// StreamTerminator is the sentinel payload ending an event stream.
	StreamTerminator = "[DONE]"
)

// Message is a single role/content pair in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the accepted subset of the OpenAI chat request.
type ChatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Choice carries a complete assistant message.
type Choice struct {
	Message Message `json:"message"`
}

// ChatCompletion is the non-streaming response envelope.
// The id is the epoch second at construction time, matching the upstream
// contract; it is not unique across concurrent requests.
type ChatCompletion struct {
	ID      int64    `json:"id"`
	Object  string   `json:"object"`
	Created float64  `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Delta carries one streamed content fragment.
type Delta struct {
	Content string `json:"content"`
}

// DeltaChoice wraps a Delta in the chunk envelope.
type DeltaChoice struct {
	Delta Delta `json:"delta"`
}

// ChatCompletionChunk is one streamed frame of a completion.
type ChatCompletionChunk struct {
	ID      int64         `json:"id"`
	Object  string        `json:"object"`
	Created float64       `json:"created"`
	Model   string        `json:"model"`
	Choices []DeltaChoice `json:"choices"`
}

// NewChatCompletion wraps a full reply string into a response envelope.
func NewChatCompletion(model, content string, now time.Time) ChatCompletion {
	return ChatCompletion{
		ID:      now.Unix(),
		Object:  ObjectChatCompletion,
		Created: epochSeconds(now),
		Model:   model,
		Choices: []Choice{{Message: Message{Role: RoleAssistant, Content: content}}},
	}
}

// NewChatCompletionChunk wraps one reply token into a chunk envelope.
func NewChatCompletionChunk(model, token string, now time.Time) ChatCompletionChunk {
	return ChatCompletionChunk{
		ID:      now.Unix(),
		Object:  ObjectChatCompletionChunk,
		Created: epochSeconds(now),
		Model:   model,
		Choices: []DeltaChoice{{Delta: Delta{Content: token}}},
	}
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
