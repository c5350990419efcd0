package chat

import (
	"context"
	"io"
	"testing"
	"time"

	"goduck/internal/openai"

	"github.com/stretchr/testify/assert"
)

type mockStream struct {
	tokens []string
	next   int
	err    error // returned after the tokens instead of io.EOF
	closed bool
}

func (m *mockStream) Recv() (string, error) {
	if m.next < len(m.tokens) {
		token := m.tokens[m.next]
		m.next++
		return token, nil
	}
	if m.err != nil {
		return "", m.err
	}
	return "", io.EOF
}

func (m *mockStream) Close() error {
	m.closed = true
	return nil
}

type mockEngine struct {
	reply      string
	stream     *mockStream
	err        error
	calls      int
	lastPrompt string
	lastModel  string
}

func (m *mockEngine) Chat(ctx context.Context, prompt, model string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastModel = model
	return m.reply, m.err
}

func (m *mockEngine) ChatStream(ctx context.Context, prompt, model string) (TokenStream, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastModel = model
	if m.err != nil {
		return nil, m.err
	}
	return m.stream, nil
}

func TestComplete(t *testing.T) {
	engine := &mockEngine{reply: "Hi there!"}
	bridge := NewBridge(engine)

	req := openai.ChatCompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []openai.Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
	}
	resp, err := bridge.Complete(context.Background(), req)
	assert.NoError(t, err)

	// Only the last message is forwarded; prior turns are dropped.
	assert.Equal(t, "hello", engine.lastPrompt)
	assert.Equal(t, "gpt-4o-mini", engine.lastModel)

	assert.Equal(t, openai.ObjectChatCompletion, resp.Object)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Len(t, resp.Choices, 1)
	assert.Equal(t, openai.RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "Hi there!", resp.Choices[0].Message.Content)
	assert.InDelta(t, float64(time.Now().Unix()), resp.Created, 2)
	assert.Equal(t, resp.ID, int64(resp.Created))
}

func TestComplete_DefaultModel(t *testing.T) {
	engine := &mockEngine{reply: "ok"}
	bridge := NewBridge(engine)

	resp, err := bridge.Complete(context.Background(), openai.ChatCompletionRequest{
		Messages: []openai.Message{{Role: "user", Content: "hi"}},
	})
	assert.NoError(t, err)
	assert.Equal(t, DefaultModel, engine.lastModel)
	assert.Equal(t, DefaultModel, resp.Model)
}

func TestComplete_EmptyMessages(t *testing.T) {
	engine := &mockEngine{reply: "still works"}
	bridge := NewBridge(engine)

	resp, err := bridge.Complete(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	assert.NoError(t, err)
	// The empty prompt is still forwarded, not rejected.
	assert.Equal(t, "", engine.lastPrompt)
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, "still works", resp.Choices[0].Message.Content)
}

func TestStream(t *testing.T) {
	engine := &mockEngine{stream: &mockStream{tokens: []string{"a", "b"}}}
	bridge := NewBridge(engine)

	stream, model, err := bridge.Stream(context.Background(), openai.ChatCompletionRequest{
		Messages: []openai.Message{{Role: "user", Content: "hi"}},
	})
	assert.NoError(t, err)
	assert.Equal(t, DefaultModel, model)

	token, err := stream.Recv()
	assert.NoError(t, err)
	assert.Equal(t, "a", token)
}
