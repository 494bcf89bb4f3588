package agent

import (
	"path/filepath"
	"testing"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	vault := testutil.NewVaultBuilder(t).
		Admin("admin", "Admin").
		Skill("writer", "Writer").
		Project("notes", "Notes").
		Build()
	return NewStore(vault)
}

func TestStore_Resolve(t *testing.T) {
	store := newTestStore(t)

	def, err := store.Resolve("writer")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if def == nil || def.Type != core.AgentTypeSkill || def.Name != "Writer" {
		t.Fatalf("Resolve returned %+v", def)
	}
	if def.Path != filepath.Join(store.Vault(), "agents", "skills", "writer") {
		t.Errorf("path = %q", def.Path)
	}

	missing, err := store.Resolve("ghost")
	if err != nil {
		t.Fatalf("Resolve missing: %v", err)
	}
	if missing != nil {
		t.Error("unknown agent should resolve as (nil, nil)")
	}
}

func TestStore_ResolvePath(t *testing.T) {
	store := newTestStore(t)

	if got := store.ResolvePath("admin"); got != filepath.Join(store.Vault(), "agents", "admin", "admin") {
		t.Errorf("ResolvePath(admin) = %q", got)
	}
	if got := store.ResolvePath("ghost"); got != "" {
		t.Errorf("ResolvePath(ghost) = %q, want empty", got)
	}
}

func TestStore_ResolveSkill(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name  string
		found bool
	}{
		{"writer", true},
		{"Writer", true},
		{"WRITER", true},
		{"notes", false}, // project agents are not skills
		{"ghost", false},
	}
	for _, tt := range tests {
		def, err := store.ResolveSkill(tt.name)
		if err != nil {
			t.Fatalf("ResolveSkill(%s): %v", tt.name, err)
		}
		if (def != nil) != tt.found {
			t.Errorf("ResolveSkill(%s) found = %v, want %v", tt.name, def != nil, tt.found)
		}
	}
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)

	defs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("List returned %d agents", len(defs))
	}

	byID := map[string]core.AgentType{}
	for _, def := range defs {
		byID[def.ID] = def.Type
	}
	want := map[string]core.AgentType{
		"admin":  core.AgentTypeAdmin,
		"writer": core.AgentTypeSkill,
		"notes":  core.AgentTypeProject,
	}
	for id, kind := range want {
		if byID[id] != kind {
			t.Errorf("agent %s has type %q, want %q", id, byID[id], kind)
		}
	}
}

func TestStore_ListEmptyVault(t *testing.T) {
	store := NewStore(t.TempDir())
	defs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("empty vault listed %d agents", len(defs))
	}
}
