package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// VaultBuilder assembles a throwaway vault directory with agent definition
// documents for tests. Example:
//
//	vault := NewVaultBuilder(t).
//		Admin("admin", "Admin").
//		Skill("writer", "Writer").
//		Build()
type VaultBuilder struct {
	t    *testing.T
	root string
}

// NewVaultBuilder creates a builder rooted at a fresh t.TempDir().
func NewVaultBuilder(t *testing.T) *VaultBuilder {
	t.Helper()
	return &VaultBuilder{t: t, root: t.TempDir()}
}

// Admin adds an admin agent (chainable).
func (b *VaultBuilder) Admin(id, name string) *VaultBuilder {
	return b.agent(filepath.Join("agents", "admin", id), id, name, "admin", "**/*")
}

// Skill adds a skill agent (chainable).
func (b *VaultBuilder) Skill(id, name string) *VaultBuilder {
	return b.agent(filepath.Join("agents", "skills", id), id, name, "skill", "**/*")
}

// Project adds a project agent scoped to its project tree (chainable).
func (b *VaultBuilder) Project(id, name string) *VaultBuilder {
	return b.agent(filepath.Join("projects", id), id, name, "project", fmt.Sprintf("projects/%s/**", id))
}

// File writes an arbitrary file relative to the vault root (chainable).
func (b *VaultBuilder) File(rel, content string) *VaultBuilder {
	b.t.Helper()
	path := filepath.Join(b.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		b.t.Fatalf("write %s: %v", rel, err)
	}
	return b
}

// Build returns the vault root path.
func (b *VaultBuilder) Build() string { return b.root }

// AgentDir returns the directory of a previously added agent.
func (b *VaultBuilder) AgentDir(rel string) string { return filepath.Join(b.root, rel) }

func (b *VaultBuilder) agent(rel, id, name, kind, scope string) *VaultBuilder {
	doc := fmt.Sprintf(`---
name: %s
id: %s
type: %s
scope: "%s"
---

## Identity

%s is a test agent.

## Capabilities

- Responds to chat messages.

## Guidelines

Be brief.
`, name, id, kind, scope, name)
	return b.File(filepath.Join(rel, "agent.md"), doc)
}
