package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentvault/agent"
	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/testutil"
	"github.com/hupe1980/agentvault/session"
)

// Interface compliance (compile-time assertion)
var _ Handler = HandlerFunc(nil)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *session.Store, string) {
	t.Helper()
	vault := testutil.NewVaultBuilder(t).
		Admin("admin", "Admin").
		Skill("writer", "Writer").
		Project("notes", "Notes").
		Build()
	agents := agent.NewStore(vault)
	sessions := session.NewStore(vault)
	return NewOrchestrator(agents, sessions), sessions, vault
}

func TestOrchestrator_EchoRoundTrip(t *testing.T) {
	ctx := context.Background()
	o, sessions, _ := newTestOrchestrator(t)

	chatCtx, err := o.Init(ctx, InitOptions{AgentID: "writer"})
	require.NoError(t, err)
	require.NotNil(t, chatCtx)
	assert.Equal(t, "Writer", chatCtx.Agent.Name)
	assert.Equal(t, core.AgentTypeSkill, chatCtx.Agent.Type)

	reply, err := o.Send(ctx, chatCtx, "Hello!", nil)
	require.NoError(t, err)
	assert.Equal(t, "[Writer Agent] Echo: Hello!", reply)

	// Both sides of the turn land in the durable transcript.
	msgs, err := sessions.Messages(ctx, chatCtx.Session.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello!", msgs[0].Content)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "[Writer Agent] Echo: Hello!", msgs[1].Content)

	// And are mirrored into the in-memory history.
	assert.Len(t, chatCtx.History, 2)
	assert.Equal(t, 2, chatCtx.Session.MessageCount)

	stored, err := sessions.Get(ctx, chatCtx.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.MessageCount)
}

func TestOrchestrator_DefaultsToAdminAgent(t *testing.T) {
	ctx := context.Background()
	o, _, _ := newTestOrchestrator(t)

	reply, chatCtx, err := o.Once(ctx, InitOptions{}, "status?", nil)
	require.NoError(t, err)
	require.NotNil(t, chatCtx)
	assert.Equal(t, core.AgentTypeAdmin, chatCtx.Agent.Type)
	assert.Equal(t, "[Admin Agent] Echo: status?", reply)
}

func TestOrchestrator_UnresolvableAgent(t *testing.T) {
	ctx := context.Background()
	o, _, _ := newTestOrchestrator(t)

	chatCtx, err := o.Init(ctx, InitOptions{AgentID: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, chatCtx)

	reply, chatCtx, err := o.Once(ctx, InitOptions{AgentID: "ghost"}, "hi", nil)
	require.NoError(t, err)
	assert.Nil(t, chatCtx)
	assert.Empty(t, reply)
}

func TestOrchestrator_SessionReuseAndNewSession(t *testing.T) {
	ctx := context.Background()
	o, _, _ := newTestOrchestrator(t)

	first, err := o.Init(ctx, InitOptions{AgentID: "notes"})
	require.NoError(t, err)
	second, err := o.Init(ctx, InitOptions{AgentID: "notes"})
	require.NoError(t, err)
	assert.Equal(t, first.Session.ID, second.Session.ID, "active session should be reused")

	fresh, err := o.Init(ctx, InitOptions{AgentID: "notes", NewSession: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.Session.ID, fresh.Session.ID)
}

func TestOrchestrator_HandlerErrorLeavesNoAssistantEntry(t *testing.T) {
	ctx := context.Background()
	o, sessions, _ := newTestOrchestrator(t)

	chatCtx, err := o.Init(ctx, InitOptions{AgentID: "writer"})
	require.NoError(t, err)

	failing := HandlerFunc(func(ctx context.Context, text string, chatCtx *Context) (string, error) {
		return "", errors.New("model unavailable")
	})
	_, err = o.Send(ctx, chatCtx, "Hello!", failing)
	require.Error(t, err)

	msgs, err := sessions.Messages(ctx, chatCtx.Session.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1, "the user message is durable even when the handler fails")
	assert.Equal(t, core.RoleUser, msgs[0].Role)
}

func TestBuildSystemPrompt(t *testing.T) {
	def := &core.AgentDefinition{
		Name: "Notes",
		Sections: core.AgentSections{
			Identity:   "Keeps the notes project tidy.",
			Guidelines: "Be brief.",
		},
	}

	got := BuildSystemPrompt(def)
	assert.True(t, strings.HasPrefix(got, "You are Notes.\n"))
	assert.Contains(t, got, "## Identity")
	assert.Contains(t, got, "## Guidelines")
	assert.NotContains(t, got, "## Capabilities", "empty sections are skipped")
}

func TestFormatHistory(t *testing.T) {
	msgs := []core.TranscriptMessage{
		{Role: core.RoleUser, Content: "one"},
		{Role: core.RoleAssistant, Content: "two"},
		{Role: core.RoleUser, Content: "three"},
	}

	full := FormatHistory(msgs, 0)
	assert.Equal(t, "USER: one\n\nASSISTANT: two\n\nUSER: three", full)

	tail := FormatHistory(msgs, 2)
	assert.Equal(t, "ASSISTANT: two\n\nUSER: three", tail)

	assert.Empty(t, FormatHistory(nil, 5))
}
