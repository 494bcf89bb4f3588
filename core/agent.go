package core

import "fmt"

// AgentType categorizes an agent. The set is closed: admin agents steward the
// vault as a whole, project agents are scoped to a single project tree, and
// skill agents provide a narrow reusable capability.
type AgentType string

const (
	// AgentTypeAdmin is the vault-wide administrative agent kind.
	AgentTypeAdmin AgentType = "admin"
	// AgentTypeProject is the project-scoped agent kind.
	AgentTypeProject AgentType = "project"
	// AgentTypeSkill is the reusable capability agent kind.
	AgentTypeSkill AgentType = "skill"
)

// Valid reports whether t is one of the closed set of agent kinds.
func (t AgentType) Valid() bool {
	switch t {
	case AgentTypeAdmin, AgentTypeProject, AgentTypeSkill:
		return true
	default:
		return false
	}
}

// String returns the string form of the agent type.
func (t AgentType) String() string { return string(t) }

// ParseAgentType converts a raw string into an AgentType, rejecting anything
// outside the closed set so new kinds force an explicit decision at every
// parse site.
func ParseAgentType(s string) (AgentType, error) {
	t := AgentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown agent type %q", s)
	}
	return t, nil
}

// AgentSections holds the free-text body of an agent definition document.
// Recognized headings map to the named fields; everything else is preserved
// verbatim in Other keyed by its heading.
type AgentSections struct {
	Identity     string            `json:"identity,omitempty"`
	Capabilities string            `json:"capabilities,omitempty"`
	Guidelines   string            `json:"guidelines,omitempty"`
	Other        map[string]string `json:"other,omitempty"`
}

// AgentDefinition is the parsed identity document of an agent. It is parsed
// fresh from its canonical document on each resolution and never cached
// across process restarts.
type AgentDefinition struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     AgentType     `json:"type"`
	Scope    string        `json:"scope"` // glob pattern over vault paths
	Sections AgentSections `json:"sections"`
	Path     string        `json:"path"` // directory owning the definition
}
