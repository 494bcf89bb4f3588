package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentvault/agent"
	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/logging"
	"github.com/hupe1980/agentvault/session"
)

// Context is the bundle carried across one conversation: the resolved agent,
// its owning directory, the session and the in-memory history mirrored from
// transcript appends.
type Context struct {
	Agent     *core.AgentDefinition
	Session   *core.Session
	AgentPath string
	History   []core.TranscriptMessage
}

// InitOptions selects the target agent and session behavior for Init.
type InitOptions struct {
	// AgentID picks the agent; empty means the administrative agent.
	AgentID string
	// NewSession forces a fresh session instead of reusing the active one.
	NewSession bool
}

// Options configures an Orchestrator.
type Options struct {
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Orchestrator coordinates agents, sessions and handlers for chats.
type Orchestrator struct {
	agents   *agent.Store
	sessions *session.Store
	logger   logging.Logger
}

// NewOrchestrator wires a chat orchestrator over the given stores.
func NewOrchestrator(agents *agent.Store, sessions *session.Store, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{agents: agents, sessions: sessions, logger: opts.Logger}
}

// BuildSystemPrompt renders the conversational instruction for an agent: an
// introductory identity line followed by headed sections for any present
// identity, capabilities and guidelines content.
func BuildSystemPrompt(def *core.AgentDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", def.Name)
	write := func(title, content string) {
		if content == "" {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", title, content)
	}
	write("Identity", def.Sections.Identity)
	write("Capabilities", def.Sections.Capabilities)
	write("Guidelines", def.Sections.Guidelines)
	return b.String()
}

// FormatHistory renders messages as "ROLE: content" pairs separated by blank
// lines, keeping only the most recent maxMessages entries (non-positive means
// unlimited) while preserving chronological order among the kept entries.
func FormatHistory(messages []core.TranscriptMessage, maxMessages int) string {
	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(string(msg.Role)), msg.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Init resolves the target agent and loads or creates its session, returning
// the context bundle for subsequent sends. It returns (nil, nil) when the
// agent cannot be resolved.
func (o *Orchestrator) Init(ctx context.Context, opts InitOptions) (*Context, error) {
	def, err := o.resolveTarget(opts.AgentID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		o.logger.Debug("chat target not resolvable", "agent_id", opts.AgentID)
		return nil, nil
	}

	var sess *core.Session
	if opts.NewSession {
		sess, err = o.sessions.Create(ctx, def.ID)
	} else {
		sess, err = o.sessions.GetOrCreateActive(ctx, def.ID)
	}
	if err != nil {
		return nil, err
	}

	return &Context{
		Agent:     def,
		Session:   sess,
		AgentPath: def.Path,
		History:   []core.TranscriptMessage{},
	}, nil
}

// Send appends the user message to the transcript, invokes the handler
// (falling back to the echo responder when nil), records the reply as an
// assistant transcript entry and mirrors both into the in-memory history.
func (o *Orchestrator) Send(ctx context.Context, chatCtx *Context, text string, handler Handler) (string, error) {
	if handler == nil {
		handler = EchoHandler()
	}

	userMsg := core.NewTranscriptMessage(core.RoleUser, text)
	if err := o.sessions.AppendMessage(ctx, chatCtx.Session.ID, userMsg); err != nil {
		return "", fmt.Errorf("append user message: %w", err)
	}

	reply, err := handler.Handle(ctx, text, chatCtx)
	if err != nil {
		return "", fmt.Errorf("handler failed: %w", err)
	}

	assistantMsg := core.NewTranscriptMessage(core.RoleAssistant, reply)
	if err := o.sessions.AppendMessage(ctx, chatCtx.Session.ID, assistantMsg); err != nil {
		return "", fmt.Errorf("append assistant message: %w", err)
	}

	chatCtx.History = append(chatCtx.History, userMsg, assistantMsg)
	chatCtx.Session.MessageCount += 2
	o.logger.Debug("chat turn completed", "agent_id", chatCtx.Agent.ID, "session_id", chatCtx.Session.ID)
	return reply, nil
}

// Once performs init+send as a single call, returning the reply and the
// resulting context. The context is nil when the agent cannot be resolved.
func (o *Orchestrator) Once(ctx context.Context, opts InitOptions, text string, handler Handler) (string, *Context, error) {
	chatCtx, err := o.Init(ctx, opts)
	if err != nil || chatCtx == nil {
		return "", nil, err
	}
	reply, err := o.Send(ctx, chatCtx, text, handler)
	if err != nil {
		return "", chatCtx, err
	}
	return reply, chatCtx, nil
}

// ListAgents enumerates every resolvable agent across all namespaces.
func (o *Orchestrator) ListAgents() ([]*core.AgentDefinition, error) {
	return o.agents.List()
}

// resolveTarget picks the agent for a chat: an explicit id when given,
// otherwise the first administrative agent in the vault.
func (o *Orchestrator) resolveTarget(agentID string) (*core.AgentDefinition, error) {
	if agentID != "" {
		return o.agents.Resolve(agentID)
	}
	defs, err := o.agents.List()
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if def.Type == core.AgentTypeAdmin {
			return def, nil
		}
	}
	return nil, nil
}
