package core

import "time"

// Message is the unit of asynchronous inter-agent communication. It is
// delivered into the recipient's mailbox and consumed via an explicit
// receive call. After delivery it should be treated as immutable.
type Message struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Subject   string         `json:"subject"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewMessage constructs a timestamped message between two agents.
func NewMessage(from, to, subject string, payload map[string]any) Message {
	return Message{
		ID:        NewID(),
		From:      from,
		To:        to,
		Subject:   subject,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
