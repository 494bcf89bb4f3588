package chat

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentvault/model"
	"github.com/hupe1980/agentvault/prompt"
)

// Handler produces the assistant reply for one user message. The chat
// context carries the resolved agent, the session and the in-memory history
// up to (but excluding) the message being handled.
type Handler interface {
	Handle(ctx context.Context, text string, chatCtx *Context) (string, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, text string, chatCtx *Context) (string, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, text string, chatCtx *Context) (string, error) {
	return f(ctx, text, chatCtx)
}

// EchoHandler is the deterministic fallback used when no language-model
// handler is wired: it echoes the input prefixed with the agent's name.
func EchoHandler() Handler {
	return HandlerFunc(func(_ context.Context, text string, chatCtx *Context) (string, error) {
		return fmt.Sprintf("[%s Agent] Echo: %s", chatCtx.Agent.Name, text), nil
	})
}

// ModelHandler bridges a language-model handler into a chat handler: the
// system prompt is assembled from the agent's documents and the session
// history becomes the conversation turns.
func ModelHandler(m model.Handler, assembler *prompt.Assembler) Handler {
	if assembler == nil {
		assembler = prompt.NewAssembler()
	}
	return HandlerFunc(func(ctx context.Context, text string, chatCtx *Context) (string, error) {
		systemPrompt, err := assembler.SystemPrompt(ctx, chatCtx.AgentPath, prompt.SystemPromptOptions{})
		if err != nil {
			return "", fmt.Errorf("assemble system prompt: %w", err)
		}
		messages := make([]model.Message, 0, len(chatCtx.History)+1)
		for _, msg := range chatCtx.History {
			messages = append(messages, model.Message{Role: string(msg.Role), Content: msg.Content})
		}
		messages = append(messages, model.Message{Role: "user", Content: text})

		resp, err := m.Chat(ctx, model.Request{SystemPrompt: systemPrompt, Messages: messages})
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	})
}
