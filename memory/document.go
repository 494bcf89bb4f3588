package memory

import (
	"fmt"
	"strings"
	"time"
)

// Section is one heading-addressed block of an agent memory document.
type Section struct {
	Title   string
	Content string
	Level   int
}

// Memory is the in-memory form of an agent's long-term state document.
// Mutating methods operate on the struct only; persistence happens through
// Store.Save which rewrites the whole document.
type Memory struct {
	AgentID  string
	Updated  time.Time
	Version  int
	Title    string
	Sections []Section
}

// SectionUpdate is one entry of a batch memory update. Missing sections are
// created (upsert semantics), unlike the single-section UpdateSection call.
type SectionUpdate struct {
	Title   string
	Content string
	Append  bool
}

// Section returns a pointer to the section with the given title
// (case-insensitive) or nil when no section matches.
func (m *Memory) Section(title string) *Section {
	for i := range m.Sections {
		if strings.EqualFold(m.Sections[i].Title, title) {
			return &m.Sections[i]
		}
	}
	return nil
}

// UpdateSection replaces or, when append is set, extends the content of an
// existing section. It reports false when the section does not exist; callers
// needing upsert semantics use AddSection or ApplyUpdates.
func (m *Memory) UpdateSection(title, content string, append bool) bool {
	sec := m.Section(title)
	if sec == nil {
		return false
	}
	if append && sec.Content != "" {
		sec.Content = sec.Content + "\n\n" + content
	} else {
		sec.Content = content
	}
	return true
}

// AddSection appends a new section at the given heading level (defaulting to
// level 2 when out of range).
func (m *Memory) AddSection(title, content string, level int) {
	if level < 1 || level > 6 {
		level = 2
	}
	m.Sections = append(m.Sections, Section{Title: title, Content: content, Level: level})
}

// RemoveSection deletes the section with the given title, reporting whether
// anything was removed.
func (m *Memory) RemoveSection(title string) bool {
	for i := range m.Sections {
		if strings.EqualFold(m.Sections[i].Title, title) {
			m.Sections = append(m.Sections[:i], m.Sections[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyUpdates applies a batch of section updates with upsert semantics:
// updates targeting absent sections create them on demand.
func (m *Memory) ApplyUpdates(updates []SectionUpdate) {
	for _, u := range updates {
		if m.UpdateSection(u.Title, u.Content, u.Append) {
			continue
		}
		m.AddSection(u.Title, u.Content, 2)
	}
}

// render serializes the document body (title + sections) as markdown.
func (m *Memory) render() string {
	var b strings.Builder
	title := m.Title
	if title == "" {
		title = fmt.Sprintf("Memory: %s", m.AgentID)
	}
	fmt.Fprintf(&b, "# %s\n", title)
	for _, sec := range m.Sections {
		level := sec.Level
		if level < 1 || level > 6 {
			level = 2
		}
		fmt.Fprintf(&b, "\n%s %s\n", strings.Repeat("#", level), sec.Title)
		if sec.Content != "" {
			fmt.Fprintf(&b, "\n%s\n", sec.Content)
		}
	}
	return b.String()
}

// parseBody splits a markdown body into the document title and its sections.
// The first level-1 heading becomes the title; every subsequent heading (any
// level) opens a section.
func parseBody(body string) (title string, sections []Section) {
	var (
		current *Section
		content []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(content, "\n"))
		sections = append(sections, *current)
	}
	for _, line := range strings.Split(body, "\n") {
		level, text, ok := heading(line)
		if !ok {
			content = append(content, line)
			continue
		}
		if level == 1 && title == "" && current == nil {
			title = text
			content = content[:0]
			continue
		}
		flush()
		current = &Section{Title: text, Level: level}
		content = content[:0]
	}
	flush()
	return title, sections
}

// heading parses a markdown ATX heading returning its level and text.
func heading(line string) (int, string, bool) {
	trimmed := strings.TrimLeft(line, "#")
	level := len(line) - len(trimmed)
	if level == 0 || level > 6 || !strings.HasPrefix(trimmed, " ") {
		return 0, "", false
	}
	return level, strings.TrimSpace(trimmed), true
}
