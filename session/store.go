package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/internal/util"
	"github.com/hupe1980/agentvault/logging"
)

const (
	sessionsDir  = "sessions"
	indexFile    = "index.yaml"
	indexVersion = 1
)

// index is the on-disk shape of the session index.
type index struct {
	Version  int             `yaml:"version"`
	Sessions []*core.Session `yaml:"sessions"`
}

// Options configures a Store.
type Options struct {
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
	// Now overrides the clock, primarily for tests.
	Now func() time.Time
}

// Store is a file-backed session and transcript store rooted at a vault.
// Public methods are safe for concurrent use within one process.
type Store struct {
	dir    string // <vault>/sessions
	logger logging.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewStore creates a session store for the given vault path.
func NewStore(vault string, optFns ...func(o *Options)) *Store {
	opts := Options{Logger: logging.NoOpLogger{}, Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{dir: filepath.Join(vault, sessionsDir), logger: opts.Logger, now: opts.Now}
}

// Create starts a new active session for the given agent and records it in
// the index.
func (s *Store) Create(ctx context.Context, agentID string) (*core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	sess := core.NewSession(agentID)
	sess.CreatedAt = s.now().UTC()
	sess.UpdatedAt = sess.CreatedAt
	idx.Sessions = append(idx.Sessions, sess)
	if err := s.saveIndex(idx); err != nil {
		return nil, err
	}
	s.logger.Debug("session created", "session_id", sess.ID, "agent_id", agentID)
	return sess.Clone(), nil
}

// Get returns the session with the given id, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	if sess := findSession(idx, id); sess != nil {
		return sess.Clone(), nil
	}
	return nil, nil
}

// ActiveForAgent returns the most recently updated active session for the
// agent, or (nil, nil) when the agent has none.
func (s *Store) ActiveForAgent(ctx context.Context, agentID string) (*core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	var latest *core.Session
	for _, sess := range idx.Sessions {
		if sess.AgentID != agentID || sess.Status != core.SessionActive {
			continue
		}
		if latest == nil || sess.UpdatedAt.After(latest.UpdatedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Clone(), nil
}

// GetOrCreateActive returns the agent's active session, creating one when
// none exists. The at-most-one-active-session invariant is enforced here by
// construction, not by an index constraint.
func (s *Store) GetOrCreateActive(ctx context.Context, agentID string) (*core.Session, error) {
	sess, err := s.ActiveForAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}
	return s.Create(ctx, agentID)
}

// Update applies a partial patch to the session. ID and CreatedAt are
// immutable; absent patch fields leave the session untouched. The updated
// session is returned, or (nil, nil) when the session does not exist.
func (s *Store) Update(ctx context.Context, id string, patch core.SessionPatch) (*core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	sess := findSession(idx, id)
	if sess == nil {
		return nil, nil
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("invalid session status %q", *patch.Status)
		}
		sess.Status = *patch.Status
	}
	if patch.Title != nil {
		sess.Title = *patch.Title
	}
	if patch.Tags != nil {
		sess.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.MessageCount != nil {
		sess.MessageCount = *patch.MessageCount
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.saveIndex(idx); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// End transitions the session out of the active state. Only completed and
// abandoned are accepted as terminal statuses.
func (s *Store) End(ctx context.Context, id string, status core.SessionStatus) (*core.Session, error) {
	if status != core.SessionCompleted && status != core.SessionAbandoned {
		return nil, fmt.Errorf("cannot end session with status %q", status)
	}
	return s.Update(ctx, id, core.SessionPatch{Status: &status})
}

// AppendMessage appends a record to the session transcript and refreshes the
// session metadata. The transcript write is a single-line append; the message
// count strictly increments on every call. Appending to an unknown session is
// an error because it would orphan the transcript line.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg core.TranscriptMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	sess := findSession(idx, sessionID)
	if sess == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}

	line, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode transcript message: %w", err)
	}
	if err := util.AppendLine(s.transcriptPath(sessionID), line); err != nil {
		return err
	}

	sess.MessageCount++
	sess.UpdatedAt = s.now().UTC()
	return s.saveIndex(idx)
}

// Messages reads the full transcript of a session in append order. A missing
// transcript yields an empty slice.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]core.TranscriptMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.transcriptPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return []core.TranscriptMessage{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var msgs []core.TranscriptMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var msg core.TranscriptMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			s.logger.Warn("skipping malformed transcript line", "session_id", sessionID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []core.TranscriptMessage{}
	}
	return msgs, nil
}

// RecentMessages returns the last limit transcript records in chronological
// order. A non-positive limit returns the full transcript.
func (s *Store) RecentMessages(ctx context.Context, sessionID string, limit int) ([]core.TranscriptMessage, error) {
	msgs, err := s.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || len(msgs) <= limit {
		return msgs, nil
	}
	return msgs[len(msgs)-limit:], nil
}

// ListFilter narrows a session listing. Zero values match everything.
type ListFilter struct {
	AgentID string
	Status  core.SessionStatus
}

// List returns sessions matching the filter, most recently updated first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	var out []*core.Session
	for _, sess := range idx.Sessions {
		if filter.AgentID != "" && sess.AgentID != filter.AgentID {
			continue
		}
		if filter.Status != "" && sess.Status != filter.Status {
			continue
		}
		out = append(out, sess.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Cleanup removes non-active sessions older than the cutoff from the index.
// Transcript files are deliberately retained for audit. Returns the number of
// index entries removed.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return 0, err
	}
	cutoff := s.now().UTC().Add(-olderThan)
	kept := idx.Sessions[:0]
	removed := 0
	for _, sess := range idx.Sessions {
		if sess.Status != core.SessionActive && sess.UpdatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, sess)
	}
	if removed == 0 {
		return 0, nil
	}
	idx.Sessions = kept
	if err := s.saveIndex(idx); err != nil {
		return 0, err
	}
	s.logger.Info("session index cleaned", "removed", removed)
	return removed, nil
}

// TranscriptPath exposes the on-disk location of a session transcript.
func (s *Store) TranscriptPath(sessionID string) string { return s.transcriptPath(sessionID) }

func (s *Store) transcriptPath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".jsonl")
}

func (s *Store) indexPath() string { return filepath.Join(s.dir, indexFile) }

// loadIndex reads the index file, returning an empty index when missing.
// Callers must hold s.mu.
func (s *Store) loadIndex() (*index, error) {
	raw, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &index{Version: indexVersion}, nil
		}
		return nil, fmt.Errorf("read session index: %w", err)
	}
	var idx index
	if err := yaml.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("parse session index: %w", err)
	}
	if idx.Version == 0 {
		idx.Version = indexVersion
	}
	return &idx, nil
}

// saveIndex rewrites the whole index atomically. Callers must hold s.mu.
func (s *Store) saveIndex(idx *index) error {
	raw, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode session index: %w", err)
	}
	return util.WriteFileAtomic(s.indexPath(), raw, 0o644)
}

func findSession(idx *index, id string) *core.Session {
	for _, sess := range idx.Sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}
