package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/util"
	"github.com/hupe1980/agentvault/logging"
)

// SnapshotFile is the canonical file name of a context snapshot inside the
// agent directory.
const SnapshotFile = "context.md"

// Recency bucket boundaries, measured as elapsed age from "now".
const (
	// HotMaxAge is the exclusive upper bound of the hot bucket.
	HotMaxAge = 14 * 24 * time.Hour
	// WarmMaxAge is the inclusive upper bound of the warm bucket.
	WarmMaxAge = 45 * 24 * time.Hour
)

// DefaultMaxSnapshotAge is the staleness threshold applied when callers do
// not supply one.
const DefaultMaxSnapshotAge = 24 * time.Hour

// ItemProvider supplies the knowledge-base items inside a scope. It is the
// read-only boundary to the external chunk/extraction datastore.
type ItemProvider interface {
	ItemsForScope(ctx context.Context, scope string) ([]core.ContextItem, error)
}

// ItemProviderFunc adapts a plain function to the ItemProvider interface.
type ItemProviderFunc func(ctx context.Context, scope string) ([]core.ContextItem, error)

// ItemsForScope implements ItemProvider.
func (f ItemProviderFunc) ItemsForScope(ctx context.Context, scope string) ([]core.ContextItem, error) {
	return f(ctx, scope)
}

// Options configures a Generator.
type Options struct {
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
	// Now overrides the clock, primarily for tests.
	Now func() time.Time
}

// Generator produces and persists context snapshots from an item provider.
type Generator struct {
	provider ItemProvider
	logger   logging.Logger
	now      func() time.Time
}

// NewGenerator creates a context generator over the given item provider. A
// nil provider behaves as an always-empty knowledge base.
func NewGenerator(provider ItemProvider, optFns ...func(o *Options)) *Generator {
	opts := Options{Logger: logging.NoOpLogger{}, Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{provider: provider, logger: opts.Logger, now: opts.Now}
}

// ItemsForScope queries the provider, mapping failures (and a nil provider)
// to an empty result so knowledge-base trouble never aborts a prompt build.
func (g *Generator) ItemsForScope(ctx context.Context, scope string) []core.ContextItem {
	if g.provider == nil {
		return nil
	}
	items, err := g.provider.ItemsForScope(ctx, scope)
	if err != nil {
		g.logger.Warn("item provider failed, continuing with empty context", "scope", scope, "error", err)
		return nil
	}
	return items
}

// CategorizeByRecency partitions items into hot/warm/cold buckets by elapsed
// age relative to now. The buckets are disjoint and cover the input: age
// under 14 days is hot, 14 through 45 days is warm, anything older is cold.
func CategorizeByRecency(items []core.ContextItem, now time.Time) core.ContextSections {
	sections := core.ContextSections{
		Hot:  []core.ContextItem{},
		Warm: []core.ContextItem{},
		Cold: []core.ContextItem{},
	}
	for _, item := range items {
		age := now.Sub(item.CreatedAt)
		switch {
		case age < HotMaxAge:
			sections.Hot = append(sections.Hot, item)
		case age <= WarmMaxAge:
			sections.Warm = append(sections.Warm, item)
		default:
			sections.Cold = append(sections.Cold, item)
		}
	}
	return sections
}

// Generate builds an in-memory snapshot for the agent without persisting it.
func (g *Generator) Generate(ctx context.Context, agentID, scope string) *core.ContextSnapshot {
	items := g.ItemsForScope(ctx, scope)
	now := g.now().UTC()
	return &core.ContextSnapshot{
		AgentID:     agentID,
		GeneratedAt: now,
		ItemCount:   len(items),
		Sections:    CategorizeByRecency(items, now),
	}
}

// Regenerate builds a fresh snapshot and persists it to the agent directory,
// returning the snapshot.
func (g *Generator) Regenerate(ctx context.Context, agentDir, agentID, scope string) (*core.ContextSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := g.Generate(ctx, agentID, scope)
	doc, err := renderDocument(snap)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(agentDir, SnapshotFile)
	if err := util.WriteFileAtomic(path, []byte(doc), 0o644); err != nil {
		return nil, err
	}
	g.logger.Debug("context snapshot regenerated", "agent_id", agentID, "items", snap.ItemCount, "path", path)
	return snap, nil
}

// NeedsRegeneration reports whether the agent's snapshot is older than
// maxAge. A missing snapshot is always stale; a non-positive maxAge falls
// back to DefaultMaxSnapshotAge.
func (g *Generator) NeedsRegeneration(agentDir string, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultMaxSnapshotAge
	}
	info, err := os.Stat(filepath.Join(agentDir, SnapshotFile))
	if err != nil {
		return true
	}
	return g.now().Sub(info.ModTime()) > maxAge
}

// renderDocument wraps the markdown body in the context document frontmatter.
func renderDocument(snap *core.ContextSnapshot) (string, error) {
	fm := struct {
		Type      string    `yaml:"type"`
		Agent     string    `yaml:"agent"`
		Generated time.Time `yaml:"generated"`
		Items     int       `yaml:"items"`
	}{Type: "agent-context", Agent: snap.AgentID, Generated: snap.GeneratedAt, Items: snap.ItemCount}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encode context frontmatter: %w", err)
	}
	return fmt.Sprintf("---\n%s---\n\n%s", head, GenerateMarkdown(snap)), nil
}
