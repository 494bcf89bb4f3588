package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/agentvault/core"
)

func item(id string, age time.Duration, now time.Time) core.ContextItem {
	return core.ContextItem{ID: id, Content: id, ItemType: "chunk", CreatedAt: now.Add(-age)}
}

func TestCategorizeByRecency_Boundaries(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	items := []core.ContextItem{
		item("fresh", 1*day, now),
		item("edge-hot", 13*day, now),
		item("edge-warm-low", 14*day, now),
		item("mid-warm", 30*day, now),
		item("edge-warm-high", 45*day, now),
		item("cold", 46*day, now),
	}

	sections := CategorizeByRecency(items, now)

	wantHot := []string{"fresh", "edge-hot"}
	wantWarm := []string{"edge-warm-low", "mid-warm", "edge-warm-high"}
	wantCold := []string{"cold"}

	checkIDs := func(name string, got []core.ContextItem, want []string) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s bucket has %d items, want %d", name, len(got), len(want))
		}
		for i, w := range want {
			if got[i].ID != w {
				t.Errorf("%s[%d] = %q, want %q", name, i, got[i].ID, w)
			}
		}
	}
	checkIDs("hot", sections.Hot, wantHot)
	checkIDs("warm", sections.Warm, wantWarm)
	checkIDs("cold", sections.Cold, wantCold)
}

func TestCategorizeByRecency_PartitionsInput(t *testing.T) {
	now := time.Now().UTC()
	var items []core.ContextItem
	for i := 0; i < 100; i++ {
		items = append(items, item("x", time.Duration(i)*24*time.Hour, now))
	}

	sections := CategorizeByRecency(items, now)
	total := len(sections.Hot) + len(sections.Warm) + len(sections.Cold)
	if total != len(items) {
		t.Errorf("buckets hold %d items, input had %d", total, len(items))
	}
}

func TestCategorizeByRecency_EmptyInput(t *testing.T) {
	sections := CategorizeByRecency(nil, time.Now())
	if sections.Hot == nil || sections.Warm == nil || sections.Cold == nil {
		t.Error("buckets must be initialized even for empty input")
	}
}

func TestGenerator_ProviderFailureYieldsEmptyContext(t *testing.T) {
	gen := NewGenerator(ItemProviderFunc(func(ctx context.Context, scope string) ([]core.ContextItem, error) {
		return nil, errors.New("datastore offline")
	}))

	snap := gen.Generate(context.Background(), "notes", "projects/notes/**")
	if snap.ItemCount != 0 {
		t.Errorf("ItemCount = %d, want 0", snap.ItemCount)
	}
}

func TestGenerator_NilProvider(t *testing.T) {
	gen := NewGenerator(nil)
	snap := gen.Generate(context.Background(), "notes", "**")
	if snap.ItemCount != 0 {
		t.Errorf("ItemCount = %d, want 0", snap.ItemCount)
	}
}

func TestGenerator_RegeneratePersistsSnapshot(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(ItemProviderFunc(func(ctx context.Context, scope string) ([]core.ContextItem, error) {
		return []core.ContextItem{
			item("recent", 2*24*time.Hour, now),
			item("old", 90*24*time.Hour, now),
		}, nil
	}), func(o *Options) {
		o.Now = func() time.Time { return now }
	})

	dir := t.TempDir()
	snap, err := gen.Regenerate(context.Background(), dir, "notes", "projects/notes/**")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if snap.ItemCount != 2 || len(snap.Sections.Hot) != 1 || len(snap.Sections.Cold) != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	raw, err := os.ReadFile(filepath.Join(dir, SnapshotFile))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	doc := string(raw)
	if !strings.Contains(doc, "type: agent-context") {
		t.Error("snapshot frontmatter missing document type")
	}
	if !strings.Contains(doc, "# Context: notes") {
		t.Error("snapshot body missing title")
	}
}

func TestGenerator_NeedsRegeneration(t *testing.T) {
	gen := NewGenerator(nil)
	dir := t.TempDir()

	if !gen.NeedsRegeneration(dir, time.Hour) {
		t.Error("missing snapshot is always stale")
	}

	path := filepath.Join(dir, SnapshotFile)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	if gen.NeedsRegeneration(dir, time.Hour) {
		t.Error("fresh snapshot should not be stale")
	}

	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if !gen.NeedsRegeneration(dir, 0) {
		t.Error("48h-old snapshot should exceed the default 24h threshold")
	}
}
