package core

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks the lifecycle of a conversational session.
type SessionStatus string

const (
	// SessionActive is the status of an in-progress session.
	SessionActive SessionStatus = "active"
	// SessionCompleted marks a session ended normally.
	SessionCompleted SessionStatus = "completed"
	// SessionAbandoned marks a session ended without resolution.
	SessionAbandoned SessionStatus = "abandoned"
)

// Valid reports whether s is a known session status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionCompleted, SessionAbandoned:
		return true
	default:
		return false
	}
}

// Session is the metadata record for one bounded conversation with an agent.
// The transcript itself lives in a separate append-only file keyed by ID.
//
// Contract:
//   - ID and CreatedAt are immutable after creation
//   - MessageCount equals the number of transcript lines at all times
//   - Status transitions away from active only via an explicit end call
type Session struct {
	ID           string        `yaml:"id" json:"id"`
	AgentID      string        `yaml:"agent_id" json:"agent_id"`
	Status       SessionStatus `yaml:"status" json:"status"`
	CreatedAt    time.Time     `yaml:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `yaml:"updated_at" json:"updated_at"`
	MessageCount int           `yaml:"message_count" json:"message_count"`
	Title        string        `yaml:"title,omitempty" json:"title,omitempty"`
	Tags         []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// NewSession creates an active session for the given agent.
func NewSession(agentID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        NewID(),
		AgentID:   agentID,
		Status:    SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	if s.Tags != nil {
		clone.Tags = make([]string, len(s.Tags))
		copy(clone.Tags, s.Tags)
	}
	return &clone
}

// SessionPatch carries the mutable fields of a partial session update.
// Nil fields are left untouched; ID and CreatedAt cannot be patched.
type SessionPatch struct {
	Status       *SessionStatus
	Title        *string
	Tags         []string
	MessageCount *int
}

// Role identifies the author of a transcript message.
type Role string

const (
	// RoleUser marks a caller-authored message.
	RoleUser Role = "user"
	// RoleAssistant marks an agent-authored reply.
	RoleAssistant Role = "assistant"
	// RoleSystem marks an injected system record.
	RoleSystem Role = "system"
)

// TranscriptMessage is one immutable record in a session transcript. Once
// appended it is never rewritten or truncated in place.
type TranscriptMessage struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewTranscriptMessage creates a timestamped transcript record.
func NewTranscriptMessage(role Role, content string) TranscriptMessage {
	return TranscriptMessage{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for sessions, transcript records,
// inter-agent messages and retry operations.
func NewID() string { return uuid.NewString() }
