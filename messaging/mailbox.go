package messaging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/util"
)

// MailboxFile is the canonical mailbox file name inside an agent directory.
const MailboxFile = "mailbox.jsonl"

// Mailbox is an append-ordered message queue backed by a JSONL file. Reads
// return messages in receipt order; Receive additionally drains the file.
type Mailbox struct {
	path string
}

// NewMailbox opens the mailbox of the agent owning agentDir.
func NewMailbox(agentDir string) *Mailbox {
	return &Mailbox{path: filepath.Join(agentDir, MailboxFile)}
}

// Deliver appends a message to the mailbox.
func (m *Mailbox) Deliver(msg core.Message) error {
	line, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return util.AppendLine(m.path, line)
}

// Peek returns all queued messages in receipt order without consuming them.
func (m *Mailbox) Peek() ([]core.Message, error) {
	return m.read()
}

// Receive returns all queued messages in receipt order and drains the
// mailbox.
func (m *Mailbox) Receive() ([]core.Message, error) {
	msgs, err := m.read()
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("drain mailbox: %w", err)
		}
	}
	return msgs, nil
}

// Len reports the number of queued messages.
func (m *Mailbox) Len() (int, error) {
	msgs, err := m.read()
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

func (m *Mailbox) read() ([]core.Message, error) {
	f, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []core.Message{}, nil
		}
		return nil, err
	}
	defer f.Close()

	msgs := []core.Message{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var msg core.Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return nil, fmt.Errorf("malformed mailbox line: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}
