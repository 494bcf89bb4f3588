package messaging

import (
	"context"
	"testing"

	"github.com/hupe1980/agentvault/agent"
	"github.com/hupe1980/agentvault/internal/testutil"
	"github.com/hupe1980/agentvault/memory"
)

func newTestMessenger(t *testing.T) (*Messenger, string) {
	t.Helper()
	vault := testutil.NewVaultBuilder(t).
		Admin("admin", "Admin").
		Skill("writer", "Writer").
		Project("notes", "Notes").
		Project("work", "Work").
		Build()
	return NewMessenger(agent.NewStore(vault)), vault
}

func TestMessenger_SendAndReceive(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMessenger(t)

	res := m.Send(ctx, "admin", "notes", "Hello", map[string]any{"text": "please summarize today"})
	if !res.Success {
		t.Fatalf("Send failed: %s", res.Error)
	}
	if res.MessageID == "" {
		t.Error("successful send must carry a message id")
	}

	msgs, err := m.Receive(ctx, "notes")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	got := msgs[0]
	if got.From != "admin" || got.To != "notes" || got.Subject != "Hello" {
		t.Errorf("message envelope = %+v", got)
	}
	if got.Payload["text"] != "please summarize today" {
		t.Errorf("payload = %+v", got.Payload)
	}

	// Receive drains the mailbox.
	again, err := m.Receive(ctx, "notes")
	if err != nil {
		t.Fatalf("second Receive: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("mailbox should be empty after drain, got %d", len(again))
	}
}

func TestMessenger_SendValidationFailures(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMessenger(t)

	res := m.Send(ctx, "ghost", "notes", "Hi", nil)
	if res.Success {
		t.Fatal("unknown sender must fail")
	}
	if res.Error != `Sender "ghost" not found` {
		t.Errorf("error = %q", res.Error)
	}

	res = m.Send(ctx, "admin", "ghost", "Hi", nil)
	if res.Success {
		t.Fatal("unknown recipient must fail")
	}
	if res.Error != `Recipient "ghost" not found` {
		t.Errorf("error = %q", res.Error)
	}

	// Validation failures never reach a mailbox.
	if msgs, err := m.Peek(ctx, "notes"); err != nil || len(msgs) != 0 {
		t.Errorf("Peek = (%d msgs, %v), want empty", len(msgs), err)
	}
}

func TestMessenger_Broadcast(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMessenger(t)

	results := m.Broadcast(ctx, "admin", []string{"notes", "work", "ghost"}, "Ping", nil)
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if !results["notes"].Success || !results["work"].Success {
		t.Errorf("valid recipients should succeed: %+v", results)
	}
	if results["ghost"].Success || results["ghost"].Error != `Recipient "ghost" not found` {
		t.Errorf("ghost result = %+v", results["ghost"])
	}

	for _, id := range []string{"notes", "work"} {
		msgs, err := m.Peek(ctx, id)
		if err != nil {
			t.Fatalf("Peek %s: %v", id, err)
		}
		if len(msgs) != 1 {
			t.Errorf("%s mailbox has %d messages, want 1", id, len(msgs))
		}
	}
}

func TestMessenger_BroadcastInvalidSender(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMessenger(t)

	results := m.Broadcast(ctx, "ghost", []string{"notes", "work"}, "Ping", nil)
	for id, res := range results {
		if res.Success {
			t.Errorf("%s: broadcast from unknown sender must fail", id)
		}
		if res.Error != `Sender "ghost" not found` {
			t.Errorf("%s error = %q", id, res.Error)
		}
	}
}

func TestMessenger_SendToSkill(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMessenger(t)

	// Resolution by display name is case-insensitive.
	res := m.SendToSkill(ctx, "admin", "WRITER", "draft the weekly summary")
	if !res.Success {
		t.Fatalf("SendToSkill failed: %s", res.Error)
	}

	msgs, err := m.Receive(ctx, "writer")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages", len(msgs))
	}
	got := msgs[0]
	if got.Subject != "Task request" {
		t.Errorf("subject = %q", got.Subject)
	}
	if got.Payload["task"] != "draft the weekly summary" || got.Payload["kind"] != "skill-task" {
		t.Errorf("payload = %+v", got.Payload)
	}

	res = m.SendToSkill(ctx, "admin", "juggler", "anything")
	if res.Success {
		t.Error("unknown skill must fail")
	}
}

func TestMessenger_ReceiveUnknownAgent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMessenger(t)

	if _, err := m.Receive(ctx, "ghost"); err == nil {
		t.Error("receive for unknown agent must error")
	}
	if _, err := m.Peek(ctx, "ghost"); err == nil {
		t.Error("peek for unknown agent must error")
	}
}

func TestMessenger_LoadAgentContext(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMessenger(t)

	dir := m.ResolveAgentPath("notes")
	if dir == "" {
		t.Fatal("notes should resolve")
	}

	// Without a memory document the context carries a nil memory.
	ac, err := m.LoadAgentContext(ctx, dir, "notes")
	if err != nil {
		t.Fatalf("LoadAgentContext: %v", err)
	}
	if ac.Memory != nil {
		t.Error("missing memory document should yield nil Memory")
	}

	if _, err := memory.NewStore(dir).LoadOrCreate(ctx, "notes"); err != nil {
		t.Fatalf("seed memory: %v", err)
	}
	ac, err = m.LoadAgentContext(ctx, dir, "notes")
	if err != nil {
		t.Fatalf("LoadAgentContext: %v", err)
	}
	if ac.Memory == nil {
		t.Error("memory document should be loaded")
	}
}
