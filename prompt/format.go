package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/util"
	"github.com/hupe1980/agentvault/memory"
)

// FormatAgent turns an agent definition into prompt-ready text: a short
// identity line followed by the recognized sections and any overflow
// sections, in stable order.
func FormatAgent(def *core.AgentDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent: %s (%s)\n", def.Name, def.Type)
	if def.Scope != "" {
		fmt.Fprintf(&b, "Scope: %s\n", def.Scope)
	}
	writeNamed := func(title, content string) {
		if content == "" {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", title, content)
	}
	writeNamed("Identity", def.Sections.Identity)
	writeNamed("Capabilities", def.Sections.Capabilities)
	writeNamed("Guidelines", def.Sections.Guidelines)
	for _, title := range sortedKeys(def.Sections.Other) {
		writeNamed(title, def.Sections.Other[title])
	}
	return b.String()
}

// FormatMemory turns a memory document into prompt-ready text, skipping
// sections with empty content.
func FormatMemory(mem *memory.Memory) string {
	var b strings.Builder
	title := mem.Title
	if title == "" {
		title = fmt.Sprintf("Memory: %s", mem.AgentID)
	}
	fmt.Fprintf(&b, "# %s\n", title)
	for _, sec := range mem.Sections {
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", sec.Title, sec.Content)
	}
	return b.String()
}

// FormatContext prepares a raw context document for prompt inclusion by
// stripping its leading frontmatter block.
func FormatContext(doc string) string {
	return strings.TrimSpace(util.StripFrontmatter(doc))
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
