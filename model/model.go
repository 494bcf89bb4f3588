package model

import (
	"context"
	"fmt"
)

// Message is one conversational turn passed to the handler.
type Message struct {
	Role    string `json:"role"` // "user", "assistant" or "system"
	Content string `json:"content"`
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset
// expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized handler input produced by the chat
// orchestrator: an assembled system prompt plus the conversation turns.
type Request struct {
	SystemPrompt string           `json:"system_prompt"`
	Messages     []Message        `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token accounting for a response.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is the handler's reply.
type Response struct {
	Content string     `json:"content"`
	Usage   TokenUsage `json:"usage"`
}

// Handler is the minimal interface a language-model integration must satisfy.
// Implementations should respect ctx cancellation; everything else (retries,
// timeouts) is the caller's responsibility.
type Handler interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request) (*Response, error)

// Chat implements Handler.
func (f HandlerFunc) Chat(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }

// MockHandler is a lightweight in-memory Handler useful for tests and
// examples. Canned responses are matched against the last message content;
// unmatched input yields a deterministic fallback.
type MockHandler struct {
	responses map[string]string
}

// NewMockHandler constructs an empty MockHandler.
func NewMockHandler() *MockHandler {
	return &MockHandler{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *MockHandler) AddResponse(input, response string) { m.responses[input] = response }

// Chat implements Handler.
func (m *MockHandler) Chat(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	input := req.Messages[len(req.Messages)-1].Content
	content := m.responses[input]
	if content == "" {
		content = fmt.Sprintf("Mock response to: %s", input)
	}
	in := len(req.SystemPrompt)/4 + len(input)/4
	out := len(content) / 4
	return &Response{
		Content: content,
		Usage:   TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
	}, nil
}
