package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentvault/internal/util"
	"github.com/hupe1980/agentvault/logging"
)

// DocumentFile is the canonical file name of an agent memory document inside
// the agent directory.
const DocumentFile = "memory.md"

// frontmatter mirrors the metadata block of a memory document on disk.
type frontmatter struct {
	Type    string    `yaml:"type"`
	Agent   string    `yaml:"agent"`
	Updated time.Time `yaml:"updated"`
	Version int       `yaml:"version"`
}

const documentType = "agent-memory"

// Options configures a Store.
type Options struct {
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
	// Now overrides the clock, primarily for tests.
	Now func() time.Time
}

// Store persists the memory document of one agent directory.
type Store struct {
	dir    string // agent directory owning memory.md
	logger logging.Logger
	now    func() time.Time
}

// NewStore creates a memory store for the given agent directory.
func NewStore(agentDir string, optFns ...func(o *Options)) *Store {
	opts := Options{Logger: logging.NoOpLogger{}, Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{dir: agentDir, logger: opts.Logger, now: opts.Now}
}

// Path returns the on-disk location of the memory document.
func (s *Store) Path() string { return filepath.Join(s.dir, DocumentFile) }

// Load reads and parses the memory document, returning (nil, nil) when none
// exists on disk.
func (s *Store) Load(ctx context.Context) (*Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read memory document: %w", err)
	}

	mem := &Memory{}
	fmBlock, body, has, err := util.SplitFrontmatter(string(raw))
	if err != nil {
		body = string(raw)
		has = false
	}
	if has {
		var fm frontmatter
		if err := yaml.Unmarshal([]byte(fmBlock), &fm); err == nil {
			mem.AgentID = fm.Agent
			mem.Updated = fm.Updated
			mem.Version = fm.Version
		}
	}
	mem.Title, mem.Sections = parseBody(body)
	return mem, nil
}

// LoadOrCreate guarantees a non-nil memory document, synthesizing and saving
// a default one (with Working Memory and Current State starter sections) when
// none exists.
func (s *Store) LoadOrCreate(ctx context.Context, agentID string) (*Memory, error) {
	mem, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if mem != nil {
		return mem, nil
	}

	mem = &Memory{
		AgentID: agentID,
		Title:   fmt.Sprintf("Memory: %s", agentID),
		Sections: []Section{
			{Title: "Working Memory", Content: "Nothing noted yet.", Level: 2},
			{Title: "Current State", Content: "Idle.", Level: 2},
		},
	}
	if err := s.Save(ctx, mem); err != nil {
		return nil, err
	}
	s.logger.Debug("default memory document created", "agent_id", agentID, "path", s.Path())
	return mem, nil
}

// Save rewrites the whole document, incrementing the version and refreshing
// the updated timestamp on the passed Memory.
func (s *Store) Save(ctx context.Context, mem *Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mem.Version++
	mem.Updated = s.now().UTC()

	fm := frontmatter{Type: documentType, Agent: mem.AgentID, Updated: mem.Updated, Version: mem.Version}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("encode memory frontmatter: %w", err)
	}
	doc := fmt.Sprintf("---\n%s---\n\n%s", head, mem.render())
	return util.WriteFileAtomic(s.Path(), []byte(doc), 0o644)
}
