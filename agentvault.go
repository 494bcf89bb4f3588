// Package agentvault provides a high-level façade over the file-backed agent
// runtime of a personal knowledge vault: durable agent memory, sessions with
// append-only transcripts, recency-bucketed context snapshots, token-budgeted
// prompt assembly, asynchronous inter-agent mailboxes and a retry/escalation
// engine. Most applications interact with this package by:
//  1. Creating an AgentVault via New() pointed at a vault directory
//  2. Chatting with agents (Chat / ChatWith), optionally wiring a
//     language-model handler from the model subpackages
//  3. Exchanging messages between agents (SendMessage, Broadcast,
//     ReceiveMessages)
//
// The AgentVault value is the explicit process-wide state object: every
// store, the messenger and the retry manager hang off it, and nothing in the
// module keeps hidden package-level state. All defaults are safe for local
// use; callers typically supply a structured logger and a real model handler.
package agentvault

import (
	"context"

	"github.com/hupe1980/agentvault/agent"
	"github.com/hupe1980/agentvault/chat"
	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/knowledge"
	"github.com/hupe1980/agentvault/logging"
	"github.com/hupe1980/agentvault/messaging"
	"github.com/hupe1980/agentvault/retry"
	"github.com/hupe1980/agentvault/session"
)

// Options configures the AgentVault instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
	// ItemProvider supplies knowledge-base items for context generation.
	// Nil behaves as an always-empty knowledge base.
	ItemProvider knowledge.ItemProvider
	// RetryConfig seeds the retry manager policy.
	RetryConfig retry.Config
}

// AgentVault is the high-level façade aggregating the runtime services of
// one vault.
type AgentVault struct {
	vault        string
	logger       logging.Logger
	agents       *agent.Store
	sessions     *session.Store
	generator    *knowledge.Generator
	orchestrator *chat.Orchestrator
	messenger    *messaging.Messenger
	retries      *retry.Manager
}

// New creates an AgentVault rooted at the given vault directory with
// optional overrides.
func New(vault string, optFns ...func(o *Options)) *AgentVault {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		RetryConfig: retry.DefaultConfig(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	agents := agent.NewStore(vault, func(o *agent.Options) { o.Logger = opts.Logger })
	sessions := session.NewStore(vault, func(o *session.Options) { o.Logger = opts.Logger })

	return &AgentVault{
		vault:    vault,
		logger:   opts.Logger,
		agents:   agents,
		sessions: sessions,
		generator: knowledge.NewGenerator(opts.ItemProvider, func(o *knowledge.Options) {
			o.Logger = opts.Logger
		}),
		orchestrator: chat.NewOrchestrator(agents, sessions, func(o *chat.Options) {
			o.Logger = opts.Logger
		}),
		messenger: messaging.NewMessenger(agents, func(o *messaging.Options) {
			o.Logger = opts.Logger
		}),
		retries: retry.NewManager(func(o *retry.Options) {
			o.Config = opts.RetryConfig
			o.Logger = opts.Logger
		}),
	}
}

// Vault returns the vault root path.
func (v *AgentVault) Vault() string { return v.vault }

// Agents exposes the agent definition store.
func (v *AgentVault) Agents() *agent.Store { return v.agents }

// Sessions exposes the session and transcript store.
func (v *AgentVault) Sessions() *session.Store { return v.sessions }

// Knowledge exposes the context generator.
func (v *AgentVault) Knowledge() *knowledge.Generator { return v.generator }

// Chats exposes the chat orchestrator.
func (v *AgentVault) Chats() *chat.Orchestrator { return v.orchestrator }

// Messenger exposes the inter-agent messenger.
func (v *AgentVault) Messenger() *messaging.Messenger { return v.messenger }

// Retries exposes the retry manager.
func (v *AgentVault) Retries() *retry.Manager { return v.retries }

// Chat sends one message to the administrative agent using the given handler
// (nil falls back to the deterministic echo responder). It returns the reply
// and the chat context, or a nil context when no agent resolves.
func (v *AgentVault) Chat(ctx context.Context, text string, handler chat.Handler) (string, *chat.Context, error) {
	return v.orchestrator.Once(ctx, chat.InitOptions{}, text, handler)
}

// ChatWith sends one message to a specific agent.
func (v *AgentVault) ChatWith(ctx context.Context, agentID, text string, handler chat.Handler) (string, *chat.Context, error) {
	return v.orchestrator.Once(ctx, chat.InitOptions{AgentID: agentID}, text, handler)
}

// SendMessage delivers a structured message from one agent to another.
func (v *AgentVault) SendMessage(ctx context.Context, senderID, recipientID, subject string, payload map[string]any) messaging.SendResult {
	return v.messenger.Send(ctx, senderID, recipientID, subject, payload)
}

// Broadcast fans a message out to multiple recipients.
func (v *AgentVault) Broadcast(ctx context.Context, senderID string, recipientIDs []string, subject string, payload map[string]any) map[string]messaging.SendResult {
	return v.messenger.Broadcast(ctx, senderID, recipientIDs, subject, payload)
}

// ReceiveMessages drains the agent's mailbox in receipt order.
func (v *AgentVault) ReceiveMessages(ctx context.Context, agentID string) ([]core.Message, error) {
	return v.messenger.Receive(ctx, agentID)
}

// ListAgents enumerates every resolvable agent across all namespaces.
func (v *AgentVault) ListAgents() ([]*core.AgentDefinition, error) {
	return v.agents.List()
}
