package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/util"
)

// DefinitionFile is the canonical file name of an agent definition inside
// its directory.
const DefinitionFile = "agent.md"

// frontmatter mirrors the metadata block of an agent definition document.
type frontmatter struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Scope   string `yaml:"scope"`
	Created string `yaml:"created"`
	Updated string `yaml:"updated"`
}

// ParseDefinition reads and parses the agent definition document in dir.
// Parsing is best effort: malformed or missing frontmatter falls back to the
// directory name for the id, and unrecognized body headings are preserved in
// Sections.Other rather than rejected. The only hard failure is an unreadable
// file.
func ParseDefinition(dir string, fallbackType core.AgentType) (*core.AgentDefinition, error) {
	path := filepath.Join(dir, DefinitionFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent definition: %w", err)
	}

	def := &core.AgentDefinition{
		ID:   filepath.Base(dir),
		Type: fallbackType,
		Path: dir,
	}

	fmBlock, body, has, err := util.SplitFrontmatter(string(raw))
	if err != nil {
		// Unterminated frontmatter: treat the whole document as body.
		body = string(raw)
		has = false
	}
	if has {
		var fm frontmatter
		if err := yaml.Unmarshal([]byte(fmBlock), &fm); err == nil {
			if fm.ID != "" {
				def.ID = fm.ID
			}
			def.Name = fm.Name
			def.Scope = fm.Scope
			if t, terr := core.ParseAgentType(fm.Type); terr == nil {
				def.Type = t
			}
		}
	}
	if def.Name == "" {
		def.Name = def.ID
	}

	def.Sections = parseSections(body)
	return def, nil
}

// ParseDir parses the definition owned by dir, inferring the fallback agent
// kind from the namespace segment of the path (projects is the default).
func ParseDir(dir string) (*core.AgentDefinition, error) {
	norm := filepath.ToSlash(dir)
	kind := core.AgentTypeProject
	switch {
	case strings.Contains(norm, "agents/admin/"), strings.HasSuffix(norm, "agents/admin"):
		kind = core.AgentTypeAdmin
	case strings.Contains(norm, "agents/skills/"), strings.HasSuffix(norm, "agents/skills"):
		kind = core.AgentTypeSkill
	}
	return ParseDefinition(dir, kind)
}

// parseSections walks the markdown body splitting it into heading-addressed
// sections. Identity, Capabilities and Guidelines (case-insensitive, any
// heading level) map to their named fields; everything else lands in Other.
func parseSections(body string) core.AgentSections {
	sections := core.AgentSections{}
	var (
		title   string
		content []string
	)
	flush := func() {
		if title == "" {
			return
		}
		text := strings.TrimSpace(strings.Join(content, "\n"))
		switch strings.ToLower(title) {
		case "identity":
			sections.Identity = text
		case "capabilities":
			sections.Capabilities = text
		case "guidelines":
			sections.Guidelines = text
		default:
			if sections.Other == nil {
				sections.Other = map[string]string{}
			}
			sections.Other[title] = text
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if heading, ok := headingTitle(line); ok {
			flush()
			title = heading
			content = content[:0]
			continue
		}
		content = append(content, line)
	}
	flush()
	return sections
}

// headingTitle extracts the text of a markdown ATX heading, if line is one.
func headingTitle(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, "#")
	if trimmed == line || !strings.HasPrefix(trimmed, " ") {
		return "", false
	}
	return strings.TrimSpace(trimmed), true
}
