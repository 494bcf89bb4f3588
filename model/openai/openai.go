// Package openai provides a handler wrapper for the OpenAI Chat Completions
// API. It adapts the normalized Request/Response structures into the SDK's
// message format and back.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentvault/model"
)

// Options configure the OpenAI handler adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Handler wraps the OpenAI Chat Completions API behind the generic
// model.Handler interface.
type Handler struct {
	client *openai.Client
	opts   Options
}

var _ model.Handler = (*Handler)(nil)

// NewHandler creates a new OpenAI handler using the official client.
func NewHandler(optFns ...func(o *Options)) *Handler {
	client := openai.NewClient()
	return NewHandlerFromClient(&client, optFns...)
}

// NewHandlerFromClient creates a new OpenAI handler from an existing client.
func NewHandlerFromClient(client *openai.Client, optFns ...func(o *Options)) *Handler {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Handler{client: client, opts: opts}
}

// Chat implements model.Handler via a non-streaming completion call.
func (h *Handler) Chat(ctx context.Context, req model.Request) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               h.opts.Model,
		Temperature:         openai.Float(h.opts.Temperature),
		MaxCompletionTokens: openai.Int(h.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  t.Parameters,
				},
			}
		}
		params.Tools = tools
	}

	resp, err := h.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return &model.Response{
		Content: resp.Choices[0].Message.Content,
		Usage: model.TokenUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}, nil
}

// buildMessages converts handler messages (plus the assembled system prompt)
// into OpenAI chat messages.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}
