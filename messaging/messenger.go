package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentvault/agent"
	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/logging"
	"github.com/hupe1980/agentvault/memory"
)

// SendResult reports the outcome of a single delivery. Resolution failures
// surface here as Success=false plus an error string, never as a Go error,
// so broadcasts can report per-recipient outcomes.
type SendResult struct {
	Success   bool          `json:"success"`
	MessageID string        `json:"message_id,omitempty"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// AgentContext is the id/path/memory bundle loaded for message construction.
type AgentContext struct {
	AgentID string
	Path    string
	Memory  *memory.Memory
}

// Options configures a Messenger.
type Options struct {
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Messenger resolves agents and delivers messages into their mailboxes.
type Messenger struct {
	agents *agent.Store
	logger logging.Logger
}

// NewMessenger creates a messenger over the given agent store.
func NewMessenger(agents *agent.Store, optFns ...func(o *Options)) *Messenger {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Messenger{agents: agents, logger: opts.Logger}
}

// ResolveAgentPath returns the directory owning the agent, or "" when no
// namespace contains it.
func (m *Messenger) ResolveAgentPath(agentID string) string {
	return m.agents.ResolvePath(agentID)
}

// LoadAgentContext loads the id/path/memory-snapshot bundle for an agent
// directory. A missing memory document yields a nil Memory, not an error.
func (m *Messenger) LoadAgentContext(ctx context.Context, agentPath, agentID string) (*AgentContext, error) {
	mem, err := memory.NewStore(agentPath).Load(ctx)
	if err != nil {
		return nil, err
	}
	return &AgentContext{AgentID: agentID, Path: agentPath, Memory: mem}, nil
}

// Send validates that both sides resolve, constructs a message and delivers
// it into the recipient's mailbox. Validation failures are reported in the
// result with an error string naming the failing side.
func (m *Messenger) Send(ctx context.Context, senderID, recipientID, subject string, payload map[string]any) SendResult {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return SendResult{Duration: time.Since(start), Error: err.Error()}
	}

	if m.ResolveAgentPath(senderID) == "" {
		return m.failed(start, senderID, recipientID, fmt.Sprintf("Sender %q not found", senderID))
	}
	return m.deliverFromValidSender(start, senderID, recipientID, subject, payload)
}

// SendToSkill resolves a skill agent by name and wraps the task text as a
// structured payload.
func (m *Messenger) SendToSkill(ctx context.Context, senderID, skillName, task string) SendResult {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return SendResult{Duration: time.Since(start), Error: err.Error()}
	}

	skill, err := m.agents.ResolveSkill(skillName)
	if err != nil {
		return m.failed(start, senderID, skillName, fmt.Sprintf("Recipient skill %q lookup failed: %v", skillName, err))
	}
	if skill == nil {
		return m.failed(start, senderID, skillName, fmt.Sprintf("Recipient skill %q not found", skillName))
	}
	return m.Send(ctx, senderID, skill.ID, "Task request", map[string]any{
		"task": task,
		"kind": "skill-task",
	})
}

// Broadcast fans a message out to each recipient, returning a map from
// recipient id to its individual result. The sender is validated exactly
// once per call, not once per recipient.
func (m *Messenger) Broadcast(ctx context.Context, senderID string, recipientIDs []string, subject string, payload map[string]any) map[string]SendResult {
	results := make(map[string]SendResult, len(recipientIDs))

	senderValid := m.ResolveAgentPath(senderID) != ""
	for _, recipientID := range recipientIDs {
		start := time.Now()
		if err := ctx.Err(); err != nil {
			results[recipientID] = SendResult{Duration: time.Since(start), Error: err.Error()}
			continue
		}
		if !senderValid {
			results[recipientID] = m.failed(start, senderID, recipientID, fmt.Sprintf("Sender %q not found", senderID))
			continue
		}
		results[recipientID] = m.deliverFromValidSender(start, senderID, recipientID, subject, payload)
	}
	return results
}

// Receive drains the agent's mailbox, returning delivered messages in
// receipt order. An unresolvable agent yields an error.
func (m *Messenger) Receive(ctx context.Context, agentID string) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := m.ResolveAgentPath(agentID)
	if dir == "" {
		return nil, fmt.Errorf("agent %q not found", agentID)
	}
	return NewMailbox(dir).Receive()
}

// Peek returns the agent's queued messages without draining the mailbox.
func (m *Messenger) Peek(ctx context.Context, agentID string) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := m.ResolveAgentPath(agentID)
	if dir == "" {
		return nil, fmt.Errorf("agent %q not found", agentID)
	}
	return NewMailbox(dir).Peek()
}

// deliverFromValidSender performs the recipient-side validation and the
// mailbox append for a sender already known to resolve.
func (m *Messenger) deliverFromValidSender(start time.Time, senderID, recipientID, subject string, payload map[string]any) SendResult {
	recipientDir := m.ResolveAgentPath(recipientID)
	if recipientDir == "" {
		return m.failed(start, senderID, recipientID, fmt.Sprintf("Recipient %q not found", recipientID))
	}

	msg := core.NewMessage(senderID, recipientID, subject, payload)
	if err := NewMailbox(recipientDir).Deliver(msg); err != nil {
		return m.failed(start, senderID, recipientID, fmt.Sprintf("delivery failed: %v", err))
	}

	dur := time.Since(start)
	m.logger.Debug("message delivered", "from", senderID, "to", recipientID, "message_id", msg.ID)
	return SendResult{Success: true, MessageID: msg.ID, Duration: dur}
}

func (m *Messenger) failed(start time.Time, senderID, recipientID, errMsg string) SendResult {
	m.logger.Warn("message delivery failed", "from", senderID, "to", recipientID, "error", errMsg)
	return SendResult{Duration: time.Since(start), Error: errMsg}
}
