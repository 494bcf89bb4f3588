package prompt

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/testutil"
	"github.com/hupe1980/agentvault/memory"
)

func TestBudgets_Validate(t *testing.T) {
	if err := DefaultBudgets().Validate(); err != nil {
		t.Errorf("default budgets must validate: %v", err)
	}

	bad := Budgets{Agent: 5000, Memory: 5000, Context: 5000, Conversation: 5000, Total: 8000}
	if err := bad.Validate(); err == nil {
		t.Error("oversubscribed budgets must be rejected")
	}
}

func TestAssembler_ComponentOrder(t *testing.T) {
	ctx := context.Background()
	vb := testutil.NewVaultBuilder(t).Project("notes", "Notes")
	agentDir := filepath.Join(vb.Build(), "projects", "notes")

	store := memory.NewStore(agentDir)
	if _, err := store.LoadOrCreate(ctx, "notes"); err != nil {
		t.Fatalf("seed memory: %v", err)
	}
	vb.File(filepath.Join("projects", "notes", "context.md"),
		"---\ntype: agent-context\nagent: notes\n---\n\n# Context: notes\n\n## Hot (last 14 days)\n\n- [chunk] fresh note\n")

	asm, err := NewAssembler().AssembleWithHistory(ctx, agentDir, "USER: hi\n\nASSISTANT: hello")
	if err != nil {
		t.Fatalf("AssembleWithHistory: %v", err)
	}

	want := []string{ComponentAgent, ComponentMemory, ComponentContext, ComponentConversation}
	if len(asm.Components) != len(want) {
		t.Fatalf("got %d components: %+v", len(asm.Components), asm.Components)
	}
	for i, name := range want {
		if asm.Components[i].Name != name {
			t.Errorf("component[%d] = %q, want %q", i, asm.Components[i].Name, name)
		}
	}

	if !strings.Contains(asm.SystemPrompt, "Agent: Notes (project)") {
		t.Error("agent identity missing from system prompt")
	}
	if strings.Contains(asm.SystemPrompt, "type: agent-context") {
		t.Error("context frontmatter must be stripped")
	}
}

func TestAssembler_MissingOptionalComponents(t *testing.T) {
	ctx := context.Background()
	vb := testutil.NewVaultBuilder(t).Project("bare", "Bare")
	agentDir := filepath.Join(vb.Build(), "projects", "bare")

	asm, err := NewAssembler().Assemble(ctx, agentDir)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(asm.Components) != 1 || asm.Components[0].Name != ComponentAgent {
		t.Errorf("bare agent should yield only the agent component: %+v", asm.Components)
	}
}

func TestAssembler_PerComponentBudget(t *testing.T) {
	ctx := context.Background()
	vb := testutil.NewVaultBuilder(t).Project("notes", "Notes")
	agentDir := filepath.Join(vb.Build(), "projects", "notes")

	history := strings.Repeat("USER: a very long remembered exchange\n", 500)
	asm, err := NewAssembler(func(o *Options) {
		o.Budgets = Budgets{Agent: 2000, Memory: 1500, Context: 2500, Conversation: 50, Total: 8000}
	}).AssembleWithHistory(ctx, agentDir, history)
	if err != nil {
		t.Fatalf("AssembleWithHistory: %v", err)
	}

	conv := asm.Components[len(asm.Components)-1]
	if conv.Name != ComponentConversation {
		t.Fatalf("last component = %q", conv.Name)
	}
	if !conv.Truncated {
		t.Error("oversized conversation should be truncated")
	}
	if conv.Tokens > conv.Budget+EstimateTokens(TruncationMarker) {
		t.Errorf("conversation tokens %d materially exceed budget %d", conv.Tokens, conv.Budget)
	}
	if !strings.HasSuffix(conv.Text, TruncationMarker) {
		t.Error("truncated component must carry the marker")
	}
}

func TestAssembler_TotalBudgetTrimsFromTheEnd(t *testing.T) {
	ctx := context.Background()
	vb := testutil.NewVaultBuilder(t).Project("notes", "Notes")
	agentDir := filepath.Join(vb.Build(), "projects", "notes")

	history := strings.Repeat("USER: filler filler filler\n", 100)
	asm, err := NewAssembler(func(o *Options) {
		o.Budgets = Budgets{Agent: 2000, Memory: 1500, Context: 2500, Conversation: 2000, Total: 100}
	}).AssembleWithHistory(ctx, agentDir, history)
	if err != nil {
		t.Fatalf("AssembleWithHistory: %v", err)
	}

	if got := asm.Tokens(); got > 100+EstimateTokens(TruncationMarker) {
		t.Errorf("total tokens %d materially exceed total budget", got)
	}
	// The agent identity survives; the conversation absorbs the overflow.
	if asm.Components[0].Truncated {
		t.Error("agent component should survive a total-budget trim intact")
	}
	last := asm.Components[len(asm.Components)-1]
	if !last.Truncated {
		t.Error("trailing component should absorb the overflow")
	}
}

func TestAssembler_SystemPromptExclusions(t *testing.T) {
	ctx := context.Background()
	vb := testutil.NewVaultBuilder(t).Project("notes", "Notes")
	agentDir := filepath.Join(vb.Build(), "projects", "notes")
	if _, err := memory.NewStore(agentDir).LoadOrCreate(ctx, "notes"); err != nil {
		t.Fatalf("seed memory: %v", err)
	}

	full, err := NewAssembler().SystemPrompt(ctx, agentDir, SystemPromptOptions{})
	if err != nil {
		t.Fatalf("SystemPrompt: %v", err)
	}
	if !strings.Contains(full, "Working Memory") {
		t.Error("memory should be present by default")
	}

	noMem, err := NewAssembler().SystemPrompt(ctx, agentDir, SystemPromptOptions{ExcludeMemory: true})
	if err != nil {
		t.Fatalf("SystemPrompt: %v", err)
	}
	if strings.Contains(noMem, "Working Memory") {
		t.Error("ExcludeMemory should drop the memory component")
	}
}

func TestFormatAgent(t *testing.T) {
	def := &core.AgentDefinition{
		ID:    "notes",
		Name:  "Notes",
		Type:  core.AgentTypeProject,
		Scope: "projects/notes/**",
		Sections: core.AgentSections{
			Identity:     "Keeps the notes project tidy.",
			Capabilities: "- Summarizes notes.",
			Other:        map[string]string{"Escalation": "Ping the admin agent.", "Cadence": "Daily."},
		},
	}

	got := FormatAgent(def)
	if !strings.HasPrefix(got, "Agent: Notes (project)\nScope: projects/notes/**\n") {
		t.Errorf("header = %q", got[:50])
	}
	// Recognized sections first, overflow sections in stable (sorted) order.
	idx := func(s string) int { return strings.Index(got, s) }
	if !(idx("## Identity") < idx("## Capabilities") && idx("## Capabilities") < idx("## Cadence") && idx("## Cadence") < idx("## Escalation")) {
		t.Errorf("section order wrong:\n%s", got)
	}
	if strings.Contains(got, "## Guidelines") {
		t.Error("empty sections must be skipped")
	}
}

func TestFormatMemory_SkipsEmptySections(t *testing.T) {
	mem := &memory.Memory{
		AgentID: "notes",
		Sections: []memory.Section{
			{Title: "Working Memory", Content: "Reviewing drafts.", Level: 2},
			{Title: "Empty", Content: "   ", Level: 2},
		},
	}
	got := FormatMemory(mem)
	if !strings.Contains(got, "# Memory: notes") {
		t.Errorf("fallback title missing:\n%s", got)
	}
	if strings.Contains(got, "Empty") {
		t.Error("blank sections must be skipped")
	}
}

func TestFormatContext_StripsFrontmatter(t *testing.T) {
	doc := "---\ntype: agent-context\n---\n\n# Context: notes\n"
	if got := FormatContext(doc); got != "# Context: notes" {
		t.Errorf("FormatContext = %q", got)
	}
}
