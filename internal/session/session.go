// Package session holds the per-login server-side state: the active
// dataset reference and the append-only custom chart history. It also owns
// the process-wide ingest cache, keyed by upload fingerprint, which is
// populated once per distinct upload and only read afterwards.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hasdouaaa/dashboard-autops/internal/charts"
	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

// Session is the state behind one login. All fields are managed through
// Store methods; nothing outside this package mutates them.
type Session struct {
	ID           string
	Username     string
	datasetFP    string
	chartFigures []*charts.Figure
}

// Store manages sessions and the shared ingest cache.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cache    map[string]*dataset.Table
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		cache:    make(map[string]*dataset.Table),
	}
}

// Create opens a new session for a user and returns it.
func (s *Store) Create(username string) *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		Username: username,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Delete closes a session. Its chart history dies with it; cached datasets
// stay, other sessions may reference them.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// SetDataset caches an ingested table and makes it the session's active
// dataset. A re-upload of identical content hits the cache and re-uses the
// already-parsed table.
func (s *Store) SetDataset(sessionID string, t *dataset.Table) *dataset.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[t.Fingerprint()]; ok {
		t = cached
	} else {
		s.cache[t.Fingerprint()] = t
	}

	if sess, ok := s.sessions[sessionID]; ok {
		sess.datasetFP = t.Fingerprint()
	}
	return t
}

// ActiveTable returns the session's active dataset, or nil when the session
// is unknown or has not uploaded anything yet.
func (s *Store) ActiveTable(sessionID string) *dataset.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.datasetFP == "" {
		return nil
	}
	return s.cache[sess.datasetFP]
}

// AppendChart appends a figure to the session's history. The history is
// append-only for the session's lifetime.
func (s *Store) AppendChart(sessionID string, fig *charts.Figure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.chartFigures = append(sess.chartFigures, fig)
	}
}

// Charts returns the session's figures in insertion order.
func (s *Store) Charts(sessionID string) []*charts.Figure {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]*charts.Figure, len(sess.chartFigures))
	copy(out, sess.chartFigures)
	return out
}
