package agent

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/logging"
)

// namespace pairs a directory (relative to the vault root) with the agent
// kind assumed for definitions that do not declare one.
type namespace struct {
	dir  string
	kind core.AgentType
}

// namespaces lists the searched agent locations in resolution order.
var namespaces = []namespace{
	{dir: filepath.Join("agents", "admin"), kind: core.AgentTypeAdmin},
	{dir: filepath.Join("agents", "skills"), kind: core.AgentTypeSkill},
	{dir: "projects", kind: core.AgentTypeProject},
}

// Options configures a Store.
type Options struct {
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Store resolves agent definitions inside a single vault. It holds no state
// beyond the vault path; every lookup re-reads the definition document.
type Store struct {
	vault  string
	logger logging.Logger
}

// NewStore creates a definition store rooted at the given vault path.
func NewStore(vault string, optFns ...func(o *Options)) *Store {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{vault: vault, logger: opts.Logger}
}

// Vault returns the vault root this store searches.
func (s *Store) Vault() string { return s.vault }

// ResolvePath returns the directory owning the agent with the given id, or
// "" when no namespace contains it.
func (s *Store) ResolvePath(id string) string {
	for _, ns := range namespaces {
		dir := filepath.Join(s.vault, ns.dir, id)
		if fileExists(filepath.Join(dir, DefinitionFile)) {
			return dir
		}
	}
	return ""
}

// Resolve parses the definition of the agent with the given id. It returns
// (nil, nil) when no namespace contains the agent; a non-nil error is
// reserved for unreadable documents.
func (s *Store) Resolve(id string) (*core.AgentDefinition, error) {
	for _, ns := range namespaces {
		dir := filepath.Join(s.vault, ns.dir, id)
		if !fileExists(filepath.Join(dir, DefinitionFile)) {
			continue
		}
		def, err := ParseDefinition(dir, ns.kind)
		if err != nil {
			return nil, err
		}
		return def, nil
	}
	s.logger.Debug("agent not found", "agent_id", id)
	return nil, nil
}

// ResolveSkill finds a skill agent by id or display name (case-insensitive).
// Returns (nil, nil) when no skill matches.
func (s *Store) ResolveSkill(name string) (*core.AgentDefinition, error) {
	skills, err := s.listNamespace(namespaces[1])
	if err != nil {
		return nil, err
	}
	for _, def := range skills {
		if strings.EqualFold(def.ID, name) || strings.EqualFold(def.Name, name) {
			return def, nil
		}
	}
	return nil, nil
}

// List enumerates every parseable agent definition across all namespaces.
// Unparseable entries are skipped with a warning rather than aborting the
// listing.
func (s *Store) List() ([]*core.AgentDefinition, error) {
	var all []*core.AgentDefinition
	for _, ns := range namespaces {
		defs, err := s.listNamespace(ns)
		if err != nil {
			return nil, err
		}
		all = append(all, defs...)
	}
	return all, nil
}

func (s *Store) listNamespace(ns namespace) ([]*core.AgentDefinition, error) {
	root := filepath.Join(s.vault, ns.dir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var defs []*core.AgentDefinition
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if !fileExists(filepath.Join(dir, DefinitionFile)) {
			continue
		}
		def, err := ParseDefinition(dir, ns.kind)
		if err != nil {
			s.logger.Warn("skipping unreadable agent definition", "dir", dir, "error", err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
