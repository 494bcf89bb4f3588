package knowledge

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentvault/core"
)

// DisplayCap is the maximum number of items rendered per bucket; overflow is
// summarized with a trailing "...and N more" marker.
const DisplayCap = 20

// emptyBucket is rendered in place of an empty section so readers can tell
// "no items" apart from "section missing".
const emptyBucket = "*No items in this period.*"

// GenerateMarkdown renders a snapshot as the body of a context document:
// one headed list per recency bucket plus a closing stats section.
func GenerateMarkdown(snap *core.ContextSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Context: %s\n", snap.AgentID)

	writeBucket(&b, "Hot (last 14 days)", snap.Sections.Hot)
	writeBucket(&b, "Warm (14-45 days)", snap.Sections.Warm)
	writeBucket(&b, "Cold (older than 45 days)", snap.Sections.Cold)

	b.WriteString("\n## Stats\n\n")
	fmt.Fprintf(&b, "- Total items: %d\n", snap.ItemCount)
	fmt.Fprintf(&b, "- Hot: %d / Warm: %d / Cold: %d\n",
		len(snap.Sections.Hot), len(snap.Sections.Warm), len(snap.Sections.Cold))
	fmt.Fprintf(&b, "- Generated: %s\n", snap.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

func writeBucket(b *strings.Builder, title string, items []core.ContextItem) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	if len(items) == 0 {
		b.WriteString(emptyBucket + "\n")
		return
	}
	shown := items
	if len(shown) > DisplayCap {
		shown = shown[:DisplayCap]
	}
	for _, item := range shown {
		b.WriteString(renderItem(item))
		b.WriteByte('\n')
	}
	if extra := len(items) - DisplayCap; extra > 0 {
		fmt.Fprintf(b, "- ...and %d more\n", extra)
	}
}

// renderItem formats one bullet entry: bracket-tagged type, optional bolded
// entity name, then the item content.
func renderItem(item core.ContextItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- [%s]", item.ItemType)
	if item.EntityName != "" {
		fmt.Fprintf(&b, " **%s**:", item.EntityName)
	}
	content := strings.TrimSpace(item.Content)
	if content != "" {
		b.WriteByte(' ')
		b.WriteString(content)
	}
	return b.String()
}
